package journal

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/rustyeddy/tpsl/pkg/id"
)

// DayModel is the gorm mapping of the days table.
type DayModel struct {
	Date               string   `gorm:"primaryKey;size:10"`
	RunID              string   `gorm:"index;not null"`
	InitialBalance     float64  `gorm:"type:decimal(20,8);not null"`
	FinalBalance       float64  `gorm:"type:decimal(20,8);not null"`
	TotalReturnPct     float64  `gorm:"type:decimal(20,8);not null"`
	TPSLPercent        *float64 `gorm:"type:decimal(10,4)"`
	Leverage           *int
	PositionAllocation float64 `gorm:"type:decimal(10,4);not null"`
	AchievedTarget     bool    `gorm:"not null"`
	NumTrades          int     `gorm:"not null"`
	Tests              int     `gorm:"not null"`
}

func (DayModel) TableName() string { return "days" }

// TradeModel is the gorm mapping of the trades table.
type TradeModel struct {
	TradeID      string  `gorm:"primaryKey;size:26"`
	Date         string  `gorm:"index;size:10;not null"`
	Symbol       string  `gorm:"index;not null"`
	Type         string  `gorm:"not null"`
	EntryPrice   float64 `gorm:"type:decimal(20,8);not null"`
	ExitPrice    float64 `gorm:"type:decimal(20,8);not null"`
	Size         float64 `gorm:"type:decimal(20,8);not null"`
	Leverage     int     `gorm:"not null"`
	PnL          float64 `gorm:"type:decimal(20,8);not null"`
	EntryTime    int64   `gorm:"not null"`
	ExitTime     int64   `gorm:"index;not null"`
	BalanceAfter float64 `gorm:"type:decimal(20,8);not null"`
	Reason       string  `gorm:"not null"`
}

func (TradeModel) TableName() string { return "trades" }

// Postgres stores day records through gorm.
type Postgres struct {
	db *gorm.DB
}

func NewPostgres(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewPostgresDB(db)
}

// NewPostgresDB wraps an open gorm handle and migrates the tables.
func NewPostgresDB(db *gorm.DB) (*Postgres, error) {
	if err := db.AutoMigrate(&DayModel{}, &TradeModel{}); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (j *Postgres) RecordDay(d DayRecord) error {
	if d.Date == "" {
		return fmt.Errorf("postgres journal: day record has no date")
	}
	day, trades := toModels(d)

	return j.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("date = ?", d.Date).Delete(&TradeModel{}).Error; err != nil {
			return err
		}
		if err := tx.Save(&day).Error; err != nil {
			return err
		}
		if len(trades) == 0 {
			return nil
		}
		return tx.Create(&trades).Error
	})
}

// GetDay loads a stored day and its trades.
func (j *Postgres) GetDay(date string) (DayRecord, error) {
	var day DayModel
	if err := j.db.First(&day, "date = ?", date).Error; err != nil {
		return DayRecord{}, err
	}
	var trades []TradeModel
	if err := j.db.Where("date = ?", date).Order("exit_time, trade_id").Find(&trades).Error; err != nil {
		return DayRecord{}, err
	}
	return fromModels(day, trades), nil
}

func (j *Postgres) Close() error {
	sqlDB, err := j.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toModels(d DayRecord) (DayModel, []TradeModel) {
	day := DayModel{
		Date:               d.Date,
		RunID:              d.RunID,
		InitialBalance:     d.InitialBalance,
		FinalBalance:       d.FinalBalance,
		TotalReturnPct:     d.TotalReturnPct,
		TPSLPercent:        d.TPSLPercent,
		Leverage:           d.Leverage,
		PositionAllocation: d.PositionAllocation,
		AchievedTarget:     d.AchievedTarget,
		NumTrades:          d.NumTrades,
		Tests:              d.Tests,
	}

	trades := make([]TradeModel, 0, len(d.Trades))
	for _, t := range d.Trades {
		tid := t.TradeID
		if tid == "" {
			tid = id.New()
		}
		trades = append(trades, TradeModel{
			TradeID:      tid,
			Date:         d.Date,
			Symbol:       t.Symbol,
			Type:         t.Type,
			EntryPrice:   t.EntryPrice,
			ExitPrice:    t.ExitPrice,
			Size:         t.Size,
			Leverage:     t.Leverage,
			PnL:          t.PnL,
			EntryTime:    t.EntryTime,
			ExitTime:     t.ExitTime,
			BalanceAfter: t.BalanceAfter,
			Reason:       t.Reason,
		})
	}
	return day, trades
}

func fromModels(day DayModel, trades []TradeModel) DayRecord {
	d := DayRecord{
		RunID:              day.RunID,
		Date:               day.Date,
		InitialBalance:     day.InitialBalance,
		FinalBalance:       day.FinalBalance,
		TotalReturnPct:     day.TotalReturnPct,
		TPSLPercent:        day.TPSLPercent,
		Leverage:           day.Leverage,
		PositionAllocation: day.PositionAllocation,
		AchievedTarget:     day.AchievedTarget,
		NumTrades:          day.NumTrades,
		Tests:              day.Tests,
		Trades:             make([]TradeRecord, 0, len(trades)),
	}
	for _, t := range trades {
		d.Trades = append(d.Trades, TradeRecord{
			TradeID:      t.TradeID,
			Symbol:       t.Symbol,
			Type:         t.Type,
			EntryPrice:   t.EntryPrice,
			ExitPrice:    t.ExitPrice,
			Size:         t.Size,
			Leverage:     t.Leverage,
			PnL:          t.PnL,
			EntryTime:    t.EntryTime,
			ExitTime:     t.ExitTime,
			BalanceAfter: t.BalanceAfter,
			Reason:       t.Reason,
		})
	}
	return d
}
