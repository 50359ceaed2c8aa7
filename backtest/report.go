package backtest

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/rustyeddy/tpsl/journal"
)

var money = message.NewPrinter(language.English)

const rule = "================================================================================"
const subrule = "--------------------------------------------------------------------------------"

// paramsLine renders a record's parameters, "N/A" standing in for a day the
// search found nothing for.
func paramsLine(d journal.DayRecord) string {
	pct, lev := "N/A", "N/A"
	if d.TPSLPercent != nil {
		pct = fmt.Sprintf("%g%%", *d.TPSLPercent)
	}
	if d.Leverage != nil {
		lev = fmt.Sprintf("%dx", *d.Leverage)
	}
	return fmt.Sprintf("%s TP/SL, %s leverage, %.0f%% allocation", pct, lev, d.PositionAllocation*100)
}

func yesNo(b bool) string {
	if b {
		return "YES"
	}
	return "NO"
}

// PrintDay writes the per-day result block.
func PrintDay(w io.Writer, d journal.DayRecord, target float64) {
	fmt.Fprintf(w, "\nResults for %s:\n", d.Date)
	money.Fprintf(w, "  Initial Balance: $%.2f\n", d.InitialBalance)
	money.Fprintf(w, "  Final Balance: $%.2f\n", d.FinalBalance)
	fmt.Fprintf(w, "  Total Return: %.2f%%\n", d.TotalReturnPct)
	fmt.Fprintf(w, "  Optimal Parameters: %s\n", paramsLine(d))
	money.Fprintf(w, "  Target Achieved ($%.0f): %s\n", target, yesNo(d.AchievedTarget))
	fmt.Fprintf(w, "  Number of Trades: %d\n", d.NumTrades)
	if d.Tests > 0 {
		fmt.Fprintf(w, "  Combinations Tested: %d\n", d.Tests)
	}
}

// PrintTrades lists up to n trades, all of them when n <= 0.
func PrintTrades(w io.Writer, trades []journal.TradeRecord, n int) {
	if n <= 0 || n > len(trades) {
		n = len(trades)
	}
	for i, t := range trades[:n] {
		money.Fprintf(w, "  %d. %s %s entry=%.4f exit=%.4f size=$%.2f lev=%dx pnl=$%.2f balance=$%.2f (%s)\n",
			i+1, t.Symbol, t.Type, t.EntryPrice, t.ExitPrice, t.Size, t.Leverage, t.PnL, t.BalanceAfter, t.Reason)
	}
	if n < len(trades) {
		fmt.Fprintf(w, "  ... and %d more\n", len(trades)-n)
	}
}

// PrintRun writes the end-of-run summary: the target days and the best day.
func PrintRun(w io.Writer, recs []journal.DayRecord, target float64) {
	fmt.Fprintf(w, "\n\n%s\n", rule)
	fmt.Fprintln(w, "SUMMARY")
	fmt.Fprintln(w, rule)

	if len(recs) == 0 {
		fmt.Fprintln(w, "\nNo days processed.")
		fmt.Fprintf(w, "%s\n\n", rule)
		return
	}

	var hit []string
	best := recs[0]
	for _, d := range recs {
		if d.AchievedTarget {
			hit = append(hit, d.Date)
		}
		if d.FinalBalance > best.FinalBalance {
			best = d
		}
	}

	money.Fprintf(w, "\nDays where $%.0f was achieved: %d\n", target, len(hit))
	if len(hit) > 0 {
		fmt.Fprintf(w, "  %s\n", strings.Join(hit, ", "))
	} else {
		fmt.Fprintln(w, "  None")
	}

	money.Fprintf(w, "\nMaximum balance achieved: $%.2f\n", best.FinalBalance)
	fmt.Fprintf(w, "  Day: %s\n", best.Date)
	fmt.Fprintf(w, "  Parameters: %s\n", paramsLine(best))
	fmt.Fprintf(w, "%s\n\n", rule)
}

// PrintSummary writes the statistics computed by Summarize.
func PrintSummary(w io.Writer, s Summary, target float64) {
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, "RESULTS ANALYSIS")
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Total Days Analyzed: %d\n", s.TotalDays)
	fmt.Fprintf(w, "Days with Trades: %d\n", s.DaysWithTrades)
	fmt.Fprintf(w, "Days without Trades: %d\n", s.DaysWithoutTrades)
	fmt.Fprintln(w)

	fmt.Fprintln(w, subrule)
	money.Fprintf(w, "TARGET ACHIEVEMENT ($%.0f)\n", target)
	fmt.Fprintln(w, subrule)
	fmt.Fprintf(w, "Days that achieved target: %d out of %d\n", s.TargetDays, s.TotalDays)
	fmt.Fprintf(w, "Success Rate: %.2f%%\n", s.TargetRate)
	if len(s.TargetDates) > 0 {
		fmt.Fprintf(w, "  %s\n", strings.Join(s.TargetDates, ", "))
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, subrule)
	fmt.Fprintln(w, "RETURN STATISTICS")
	fmt.Fprintln(w, subrule)
	money.Fprintf(w, "Average Return: %.2f%%\n", s.Return.Mean)
	money.Fprintf(w, "Median Return: %.2f%%\n", s.Return.Median)
	money.Fprintf(w, "Minimum Return: %.2f%%\n", s.Return.Min)
	money.Fprintf(w, "Maximum Return: %.2f%%\n", s.Return.Max)
	fmt.Fprintln(w)

	fmt.Fprintln(w, subrule)
	fmt.Fprintln(w, "FINAL BALANCE STATISTICS")
	fmt.Fprintln(w, subrule)
	money.Fprintf(w, "Average Final Balance: $%.2f\n", s.Balance.Mean)
	money.Fprintf(w, "Median Final Balance: $%.2f\n", s.Balance.Median)
	money.Fprintf(w, "Minimum Final Balance: $%.2f\n", s.Balance.Min)
	money.Fprintf(w, "Maximum Final Balance: $%.2f\n", s.Balance.Max)
	fmt.Fprintln(w)

	fmt.Fprintln(w, subrule)
	fmt.Fprintln(w, "ADDITIONAL INSIGHTS")
	fmt.Fprintln(w, subrule)

	fmt.Fprintf(w, "\nTop %d Days by Return:\n", len(s.Top))
	for i, d := range s.Top {
		money.Fprintf(w, "  %d. %s: %.2f%% ($%.2f)\n", i+1, d.Date, d.ReturnPct, d.FinalBalance)
	}
	fmt.Fprintf(w, "\nBottom %d Days by Return:\n", len(s.Bottom))
	for i, d := range s.Bottom {
		money.Fprintf(w, "  %d. %s: %.2f%% ($%.2f)\n", i+1, d.Date, d.ReturnPct, d.FinalBalance)
	}

	fmt.Fprintln(w, "\nMost Common Optimal Parameters:")
	fmt.Fprintln(w, "  (TP/SL %, Leverage, Allocation) -> Count")
	for _, p := range s.CommonParams {
		fmt.Fprintf(w, "  (%g%%, %dx, %.0f%%) -> %d days\n", p.Percent, p.Leverage, p.Allocation*100, p.Days)
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
}
