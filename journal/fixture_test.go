package journal

import "time"

func sampleDay() DayRecord {
	pct := 2.0
	lev := 5
	entry := time.Date(2024, 3, 4, 0, 1, 0, 0, time.UTC)
	return DayRecord{
		RunID:              "01HRUN",
		Date:               "2024-03-04",
		InitialBalance:     10000,
		FinalBalance:       10500,
		TotalReturnPct:     5,
		TPSLPercent:        &pct,
		Leverage:           &lev,
		PositionAllocation: 0.99,
		AchievedTarget:     false,
		NumTrades:          2,
		Tests:              17,
		Trades: []TradeRecord{
			{
				TradeID:      "01HTRADEA",
				Symbol:       "BTCUSDT",
				Type:         "LONG",
				EntryPrice:   100,
				ExitPrice:    102,
				Size:         9900,
				Leverage:     5,
				PnL:          990,
				EntryTime:    entry.UnixMilli(),
				ExitTime:     entry.Add(5 * time.Minute).UnixMilli(),
				BalanceAfter: 10990,
				Reason:       "TakeProfit",
			},
			{
				TradeID:      "01HTRADEB",
				Symbol:       "ETHUSDT",
				Type:         "SHORT",
				EntryPrice:   50,
				ExitPrice:    51,
				Size:         4900,
				Leverage:     5,
				PnL:          -490,
				EntryTime:    entry.Add(time.Minute).UnixMilli(),
				ExitTime:     entry.Add(9 * time.Minute).UnixMilli(),
				BalanceAfter: 10500,
				Reason:       "StopLoss",
			},
		},
	}
}
