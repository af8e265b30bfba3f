package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the haulage store (SQLite).
var Migrations = migrate.NewGroup("haulage")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_haulage_clients",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS haulage_clients (
    id             TEXT PRIMARY KEY,
    name           TEXT NOT NULL,
    address        TEXT NOT NULL DEFAULT '',
    phone          TEXT NOT NULL DEFAULT '',
    email          TEXT NOT NULL DEFAULT '',
    total_bills    INTEGER NOT NULL DEFAULT 0,
    total_amount   INTEGER NOT NULL DEFAULT 0,
    paid_amount    INTEGER NOT NULL DEFAULT 0,
    pending_amount INTEGER NOT NULL DEFAULT 0,
    currency       TEXT NOT NULL DEFAULT 'inr',
    created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_haulage_clients_created ON haulage_clients (created_at);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS haulage_clients`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_haulage_bills",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS haulage_bills (
    id             TEXT PRIMARY KEY,
    bill_no        INTEGER NOT NULL,
    client_id      TEXT NOT NULL,
    client_name    TEXT NOT NULL DEFAULT '',
    client_address TEXT NOT NULL DEFAULT '',
    date           TIMESTAMP NOT NULL,
    items          TEXT NOT NULL DEFAULT '[]',
    total_amount   INTEGER NOT NULL DEFAULT 0,
    total_advance  INTEGER NOT NULL DEFAULT 0,
    total_actual   INTEGER NOT NULL DEFAULT 0,
    paid_amount    INTEGER NOT NULL DEFAULT 0,
    pending_amount INTEGER NOT NULL DEFAULT 0,
    currency       TEXT NOT NULL DEFAULT 'inr',
    status         TEXT NOT NULL DEFAULT 'pending',
    created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_haulage_bills_bill_no ON haulage_bills (bill_no);
CREATE INDEX IF NOT EXISTS idx_haulage_bills_client ON haulage_bills (client_id, date);
CREATE INDEX IF NOT EXISTS idx_haulage_bills_status ON haulage_bills (status);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS haulage_bills`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_haulage_payments",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS haulage_payments (
    id          TEXT PRIMARY KEY,
    client_id   TEXT NOT NULL,
    bill_id     TEXT NOT NULL,
    amount      INTEGER NOT NULL,
    currency    TEXT NOT NULL DEFAULT 'inr',
    date        TIMESTAMP NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_haulage_payments_client ON haulage_payments (client_id, date);
CREATE INDEX IF NOT EXISTS idx_haulage_payments_bill ON haulage_payments (bill_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS haulage_payments`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_haulage_company_settings",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS haulage_company_settings (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    address     TEXT NOT NULL DEFAULT '',
    phone       TEXT NOT NULL DEFAULT '',
    phone2      TEXT NOT NULL DEFAULT '',
    email       TEXT NOT NULL DEFAULT '',
    pan_no      TEXT NOT NULL DEFAULT '',
    bank_name   TEXT NOT NULL DEFAULT '',
    account_no  TEXT NOT NULL DEFAULT '',
    ifsc_code   TEXT NOT NULL DEFAULT '',
    bank_branch TEXT NOT NULL DEFAULT '',
    proprietor  TEXT NOT NULL DEFAULT '',
    logo        TEXT NOT NULL DEFAULT '',
    updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS haulage_company_settings`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_haulage_counters",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS haulage_counters (
    name  TEXT PRIMARY KEY,
    value INTEGER NOT NULL
);

INSERT INTO haulage_counters (name, value) VALUES ('bill', 1000)
ON CONFLICT (name) DO NOTHING;
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS haulage_counters`)
				return err
			},
		},
	)
}
