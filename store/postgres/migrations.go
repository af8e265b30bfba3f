package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the haulage store.
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
    total_bills    INT NOT NULL DEFAULT 0,
    total_amount   BIGINT NOT NULL DEFAULT 0,
    paid_amount    BIGINT NOT NULL DEFAULT 0,
    pending_amount BIGINT NOT NULL DEFAULT 0,
    currency       TEXT NOT NULL DEFAULT 'inr',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_haulage_clients_created ON haulage_clients (created_at DESC);
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
    bill_no        BIGINT NOT NULL,
    client_id      TEXT NOT NULL,
    client_name    TEXT NOT NULL DEFAULT '',
    client_address TEXT NOT NULL DEFAULT '',
    date           TIMESTAMPTZ NOT NULL,
    items          JSONB NOT NULL DEFAULT '[]',
    total_amount   BIGINT NOT NULL DEFAULT 0,
    total_advance  BIGINT NOT NULL DEFAULT 0,
    total_actual   BIGINT NOT NULL DEFAULT 0,
    paid_amount    BIGINT NOT NULL DEFAULT 0,
    pending_amount BIGINT NOT NULL DEFAULT 0,
    currency       TEXT NOT NULL DEFAULT 'inr',
    status         TEXT NOT NULL DEFAULT 'pending',
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
    amount      BIGINT NOT NULL,
    currency    TEXT NOT NULL DEFAULT 'inr',
    date        TIMESTAMPTZ NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
    value BIGINT NOT NULL
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
