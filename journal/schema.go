// journal/schema.go
package journal

// Times are unix milliseconds; dates are YYYY-MM-DD.
const Schema = `
CREATE TABLE IF NOT EXISTS days (
	date TEXT PRIMARY KEY,
	run_id TEXT NOT NULL,
	initial_balance REAL NOT NULL,
	final_balance REAL NOT NULL,
	total_return_pct REAL NOT NULL,
	tp_sl_percent REAL,
	leverage INTEGER,
	position_allocation REAL NOT NULL,
	achieved_target INTEGER NOT NULL,
	num_trades INTEGER NOT NULL,
	tests INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS trades (
	trade_id TEXT PRIMARY KEY,
	date TEXT NOT NULL,
	symbol TEXT NOT NULL,
	type TEXT NOT NULL,
	entry_price REAL NOT NULL,
	exit_price REAL NOT NULL,
	size REAL NOT NULL,
	leverage INTEGER NOT NULL,
	pnl REAL NOT NULL,
	entry_time INTEGER NOT NULL,
	exit_time INTEGER NOT NULL,
	balance_after REAL NOT NULL,
	reason TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_trades_date ON trades(date);
CREATE INDEX IF NOT EXISTS idx_trades_exit_time ON trades(exit_time);
`
