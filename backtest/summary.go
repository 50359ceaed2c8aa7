package backtest

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tpsl/journal"
)

// Stats are the central and extreme values of one column.
type Stats struct {
	Mean   float64
	Median float64
	Min    float64
	Max    float64
}

type DayStat struct {
	Date         string
	ReturnPct    float64
	FinalBalance float64
}

// ParamCount is how many days chose one parameter triple.
type ParamCount struct {
	Percent    float64
	Leverage   int
	Allocation float64
	Days       int
}

// Summary aggregates the records of a run.
type Summary struct {
	TotalDays         int
	DaysWithTrades    int
	DaysWithoutTrades int
	TargetDays        int
	TargetRate        float64
	TargetDates       []string

	Return  Stats
	Balance Stats

	Top          []DayStat
	Bottom       []DayStat
	CommonParams []ParamCount
}

// Summarize computes run statistics, keeping n entries in each ranked list.
// Sums are carried in decimal so long runs do not drift.
func Summarize(recs []journal.DayRecord, n int) Summary {
	var s Summary
	if len(recs) == 0 {
		return s
	}

	days := make([]journal.DayRecord, len(recs))
	copy(days, recs)
	sort.SliceStable(days, func(i, j int) bool { return days[i].Date < days[j].Date })

	returns := make([]decimal.Decimal, 0, len(days))
	balances := make([]decimal.Decimal, 0, len(days))

	type triple struct {
		pct   float64
		lev   int
		alloc float64
	}
	counts := map[triple]int{}
	var order []triple

	for _, d := range days {
		s.TotalDays++
		if d.NumTrades > 0 {
			s.DaysWithTrades++
		} else {
			s.DaysWithoutTrades++
		}
		if d.AchievedTarget {
			s.TargetDays++
			s.TargetDates = append(s.TargetDates, d.Date)
		}
		returns = append(returns, decimal.NewFromFloat(d.TotalReturnPct))
		balances = append(balances, decimal.NewFromFloat(d.FinalBalance))

		if d.HasParams() {
			k := triple{*d.TPSLPercent, *d.Leverage, d.PositionAllocation}
			if counts[k] == 0 {
				order = append(order, k)
			}
			counts[k]++
		}
	}

	s.TargetRate = decimal.NewFromInt(int64(s.TargetDays)).
		Div(decimal.NewFromInt(int64(s.TotalDays))).
		Mul(decimal.NewFromInt(100)).
		InexactFloat64()
	s.Return = stats(returns)
	s.Balance = stats(balances)

	ranked := make([]DayStat, len(days))
	for i, d := range days {
		ranked[i] = DayStat{Date: d.Date, ReturnPct: d.TotalReturnPct, FinalBalance: d.FinalBalance}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].ReturnPct > ranked[j].ReturnPct })
	s.Top = append([]DayStat(nil), ranked[:min(n, len(ranked))]...)

	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].ReturnPct < ranked[j].ReturnPct })
	s.Bottom = append([]DayStat(nil), ranked[:min(n, len(ranked))]...)

	for _, k := range order {
		s.CommonParams = append(s.CommonParams, ParamCount{
			Percent: k.pct, Leverage: k.lev, Allocation: k.alloc, Days: counts[k],
		})
	}
	sort.SliceStable(s.CommonParams, func(i, j int) bool {
		return s.CommonParams[i].Days > s.CommonParams[j].Days
	})
	if len(s.CommonParams) > n {
		s.CommonParams = s.CommonParams[:n]
	}

	return s
}

func stats(vals []decimal.Decimal) Stats {
	if len(vals) == 0 {
		return Stats{}
	}
	sorted := make([]decimal.Decimal, len(vals))
	copy(sorted, vals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })

	var median decimal.Decimal
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		median = sorted[mid]
	} else {
		median = sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2))
	}

	return Stats{
		Mean:   decimal.Avg(vals[0], vals[1:]...).InexactFloat64(),
		Median: median.InexactFloat64(),
		Min:    sorted[0].InexactFloat64(),
		Max:    sorted[len(sorted)-1].InexactFloat64(),
	}
}
