package database

var schema = map[string][]string{
	DBSQLite3: {
		`CREATE TABLE IF NOT EXISTS fee_estimate (
		id TEXT PRIMARY KEY NOT NULL,
		item_id TEXT NOT NULL,
		price TEXT NOT NULL,
		currency TEXT NOT NULL,
		total_fee TEXT NOT NULL,
		selling_price TEXT NOT NULL,
		shipping TEXT NOT NULL,
		status TEXT NOT NULL,
		request_identifier TEXT NOT NULL,
		created_at TIMESTAMP NOT NULL
	);`,
		`CREATE INDEX IF NOT EXISTS fee_estimate_item_idx ON fee_estimate (item_id, created_at);`,
	},
	DBPostgreSQL: {
		`CREATE TABLE IF NOT EXISTS fee_estimate (
		id UUID PRIMARY KEY NOT NULL,
		item_id VARCHAR(64) NOT NULL,
		price NUMERIC NOT NULL,
		currency CHAR(3) NOT NULL,
		total_fee NUMERIC NOT NULL,
		selling_price TEXT NOT NULL,
		shipping TEXT NOT NULL,
		status TEXT NOT NULL,
		request_identifier TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	);`,
		`CREATE INDEX IF NOT EXISTS fee_estimate_item_idx ON fee_estimate (item_id, created_at);`,
	},
}
