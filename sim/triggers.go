package sim

func hitTakeProfit(p *Position, high, low float64) bool {
	if p.Side == Long {
		return high >= p.TakeProfit
	}
	return low <= p.TakeProfit
}

func hitStopLoss(p *Position, high, low float64) bool {
	if p.Side == Long {
		return low <= p.StopLoss
	}
	return high >= p.StopLoss
}

// checkExit models take-profit and stop-loss hits within one bar.
// The intra-bar path is unknown; when both levels fall inside the bar's range
// the take-profit is assumed to have been reached first.
func checkExit(p *Position, high, low float64) (exit float64, reason Reason, hit bool) {
	switch {
	case hitTakeProfit(p, high, low):
		return p.TakeProfit, ReasonTakeProfit, true
	case hitStopLoss(p, high, low):
		return p.StopLoss, ReasonStopLoss, true
	}
	return 0, "", false
}
