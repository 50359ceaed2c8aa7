package sim

// PctChange is the signed fractional move from entry to exit in the
// position's favor.
func PctChange(side Side, entry, exit float64) float64 {
	if side == Short {
		return (entry - exit) / entry
	}
	return (exit - entry) / entry
}

// RealizedPL is the profit or loss of closing p at exit.
func RealizedPL(p Position, exit float64) float64 {
	return p.Size * float64(p.Leverage) * PctChange(p.Side, p.EntryPrice, exit)
}
