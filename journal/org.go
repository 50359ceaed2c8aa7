package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatDayOrg renders a day as an Org-mode heading with the search result
// in a PROPERTIES drawer and its trades as subheadings.
func FormatDayOrg(d DayRecord) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("* Day: %s\n", d.Date))
	b.WriteString(":PROPERTIES:\n")
	if d.RunID != "" {
		b.WriteString(fmt.Sprintf(":RUN_ID: %s\n", d.RunID))
	}
	b.WriteString(fmt.Sprintf(":INITIAL_BALANCE: %.2f\n", d.InitialBalance))
	b.WriteString(fmt.Sprintf(":FINAL_BALANCE: %.2f\n", d.FinalBalance))
	b.WriteString(fmt.Sprintf(":RETURN_PCT: %.2f\n", d.TotalReturnPct))
	if d.HasParams() {
		b.WriteString(fmt.Sprintf(":TP_SL_PERCENT: %g\n", *d.TPSLPercent))
		b.WriteString(fmt.Sprintf(":LEVERAGE: %d\n", *d.Leverage))
	} else {
		b.WriteString(":TP_SL_PERCENT: none\n")
		b.WriteString(":LEVERAGE: none\n")
	}
	b.WriteString(fmt.Sprintf(":ALLOCATION: %g\n", d.PositionAllocation))
	b.WriteString(fmt.Sprintf(":ACHIEVED_TARGET: %t\n", d.AchievedTarget))
	b.WriteString(fmt.Sprintf(":NUM_TRADES: %d\n", d.NumTrades))
	b.WriteString(fmt.Sprintf(":TESTS: %d\n", d.Tests))
	b.WriteString(":END:\n")

	if len(d.Trades) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatTradesOrg(d.Trades))
	}
	return b.String()
}

// FormatTradeOrg renders a TradeRecord as an Org-mode block.
func FormatTradeOrg(t TradeRecord) string {
	heading := fmt.Sprintf("** Trade: %s %s (%s)", t.Symbol, t.Type, shortID(t.TradeID))
	open := t.OpenTime().Format(time.RFC3339)
	close := t.CloseTime().Format(time.RFC3339)

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":TRADE_ID: %s\n", t.TradeID))
	b.WriteString(fmt.Sprintf(":SYMBOL: %s\n", t.Symbol))
	b.WriteString(fmt.Sprintf(":TYPE: %s\n", t.Type))
	b.WriteString(fmt.Sprintf(":SIZE: %.2f\n", t.Size))
	b.WriteString(fmt.Sprintf(":LEVERAGE: %d\n", t.Leverage))
	b.WriteString(fmt.Sprintf(":ENTRY_PRICE: %.5f\n", t.EntryPrice))
	b.WriteString(fmt.Sprintf(":EXIT_PRICE: %.5f\n", t.ExitPrice))
	b.WriteString(fmt.Sprintf(":OPEN_TIME: %s\n", open))
	b.WriteString(fmt.Sprintf(":CLOSE_TIME: %s\n", close))
	b.WriteString(fmt.Sprintf(":PNL: %.2f\n", t.PnL))
	b.WriteString(fmt.Sprintf(":BALANCE_AFTER: %.2f\n", t.BalanceAfter))
	b.WriteString(fmt.Sprintf(":REASON: %s\n", t.Reason))
	b.WriteString(":END:\n")

	return b.String()
}

// FormatTradesOrg renders multiple trades separated by blank lines.
func FormatTradesOrg(trades []TradeRecord) string {
	var b strings.Builder
	for i, t := range trades {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(FormatTradeOrg(t))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
