package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/sqlitedriver"
	"github.com/xraph/grove/migrate"

	"github.com/xraph/haulage"
	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/id"
	"github.com/xraph/haulage/payment"
	"github.com/xraph/haulage/settings"
	haulagestore "github.com/xraph/haulage/store"
)

// compile-time interface check
var _ haulagestore.Store = (*Store)(nil)

// Store implements store.Store using SQLite via Grove ORM.
type Store struct {
	db  *grove.DB
	sdb *sqlitedriver.SqliteDB
}

// New creates a new SQLite store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		sdb: sqlitedriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates the required tables and indexes using the grove orchestrator.
func (s *Store) Migrate(ctx context.Context) error {
	executor, err := migrate.NewExecutorFor(s.sdb)
	if err != nil {
		return fmt.Errorf("haulage/sqlite: create migration executor: %w", err)
	}
	orch := migrate.NewOrchestrator(executor, Migrations)
	if _, err := orch.Migrate(ctx); err != nil {
		return fmt.Errorf("haulage/sqlite: migration failed: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// ==================== Client Store ====================

func (s *Store) CreateClient(ctx context.Context, c *client.Client) error {
	_, err := s.sdb.NewInsert(toClientModel(c)).Exec(ctx)
	return err
}

func (s *Store) GetClient(ctx context.Context, clientID id.ClientID) (*client.Client, error) {
	m := new(clientModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", clientID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, haulage.ErrClientNotFound
		}
		return nil, err
	}
	return fromClientModel(m)
}

func (s *Store) UpdateClient(ctx context.Context, c *client.Client) error {
	res, err := s.sdb.NewUpdate(toClientModel(c)).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, haulage.ErrClientNotFound)
}

func (s *Store) ListClients(ctx context.Context, opts client.ListOpts) ([]*client.Client, error) {
	var models []clientModel
	q := s.sdb.NewSelect(&models).OrderExpr("created_at DESC")
	if opts.Search != "" {
		pattern := haulagestore.ContainsPattern(opts.Search)
		q = q.Where(`(name LIKE ? ESCAPE '\' OR phone LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*client.Client, len(models))
	for i := range models {
		c, err := fromClientModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = c
	}
	return result, nil
}

// ==================== Bill Store ====================

func (s *Store) CreateBill(ctx context.Context, b *bill.Bill) error {
	m, err := toBillModel(b)
	if err != nil {
		return err
	}
	_, err = s.sdb.NewInsert(m).Exec(ctx)
	return err
}

func (s *Store) GetBill(ctx context.Context, billID id.BillID) (*bill.Bill, error) {
	m := new(billModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", billID.String()).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, haulage.ErrBillNotFound
		}
		return nil, err
	}
	return fromBillModel(m)
}

func (s *Store) UpdateBill(ctx context.Context, b *bill.Bill) error {
	m, err := toBillModel(b)
	if err != nil {
		return err
	}
	res, err := s.sdb.NewUpdate(m).WherePK().Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, haulage.ErrBillNotFound)
}

func (s *Store) DeleteBill(ctx context.Context, billID id.BillID) error {
	res, err := s.sdb.NewDelete((*billModel)(nil)).
		Where("id = ?", billID.String()).
		Exec(ctx)
	if err != nil {
		return err
	}
	return expectRow(res, haulage.ErrBillNotFound)
}

func (s *Store) ListBills(ctx context.Context, opts bill.ListOpts) ([]*bill.Bill, error) {
	var models []billModel
	q := s.sdb.NewSelect(&models)

	if !opts.ClientID.IsNil() {
		q = q.Where("client_id = ?", opts.ClientID.String())
	}
	if opts.Status != "" {
		q = q.Where("status = ?", string(opts.Status))
	}
	if opts.PendingOnly {
		q = q.Where("pending_amount > 0")
	}
	if !opts.Start.IsZero() {
		q = q.Where("date >= ?", opts.Start)
	}
	if !opts.End.IsZero() {
		q = q.Where("date <= ?", opts.End)
	}
	if opts.Search != "" {
		// LIKE ignores ASCII case in SQLite.
		pattern := haulagestore.ContainsPattern(opts.Search)
		q = q.Where(`(CAST(bill_no AS TEXT) LIKE ? ESCAPE '\' OR client_name LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC, bill_no DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*bill.Bill, len(models))
	for i := range models {
		b, err := fromBillModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = b
	}
	return result, nil
}

// ==================== Payment Store ====================

func (s *Store) CreatePayment(ctx context.Context, p *payment.Payment) error {
	_, err := s.sdb.NewInsert(toPaymentModel(p)).Exec(ctx)
	return err
}

func (s *Store) ListPayments(ctx context.Context, opts payment.ListOpts) ([]*payment.Payment, error) {
	var models []paymentModel
	q := s.sdb.NewSelect(&models)

	if !opts.ClientID.IsNil() {
		q = q.Where("client_id = ?", opts.ClientID.String())
	}
	if !opts.BillID.IsNil() {
		q = q.Where("bill_id = ?", opts.BillID.String())
	}
	if !opts.Start.IsZero() {
		q = q.Where("date >= ?", opts.Start)
	}
	if !opts.End.IsZero() {
		q = q.Where("date <= ?", opts.End)
	}
	if opts.Limit > 0 {
		q = q.Limit(opts.Limit)
	}
	if opts.Offset > 0 {
		q = q.Offset(opts.Offset)
	}
	q = q.OrderExpr("created_at DESC")

	if err := q.Scan(ctx); err != nil {
		return nil, err
	}

	result := make([]*payment.Payment, len(models))
	for i := range models {
		p, err := fromPaymentModel(&models[i])
		if err != nil {
			return nil, err
		}
		result[i] = p
	}
	return result, nil
}

// ==================== Settings Store ====================

func (s *Store) GetSettings(ctx context.Context) (*settings.CompanySettings, error) {
	m := new(settingsModel)
	err := s.sdb.NewSelect(m).
		Where("id = ?", settingsKey).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, haulage.ErrSettingsNotFound
		}
		return nil, err
	}
	return fromSettingsModel(m), nil
}

func (s *Store) SaveSettings(ctx context.Context, cs *settings.CompanySettings) error {
	_, err := s.sdb.NewInsert(toSettingsModel(cs)).
		OnConflict("(id) DO UPDATE").
		Set("name = EXCLUDED.name").
		Set("address = EXCLUDED.address").
		Set("phone = EXCLUDED.phone").
		Set("phone2 = EXCLUDED.phone2").
		Set("email = EXCLUDED.email").
		Set("pan_no = EXCLUDED.pan_no").
		Set("bank_name = EXCLUDED.bank_name").
		Set("account_no = EXCLUDED.account_no").
		Set("ifsc_code = EXCLUDED.ifsc_code").
		Set("bank_branch = EXCLUDED.bank_branch").
		Set("proprietor = EXCLUDED.proprietor").
		Set("logo = EXCLUDED.logo").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

// ==================== Sequence ====================

func (s *Store) CurrentBillNumber(ctx context.Context) (int64, error) {
	m := new(counterModel)
	err := s.sdb.NewSelect(m).
		Where("name = ?", billCounter).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return haulagestore.InitialBillNumber, nil
		}
		return 0, err
	}
	return m.Value, nil
}

// NextBillNumber increments the counter row in a single statement, so
// concurrent processes sharing the database never receive the same number.
func (s *Store) NextBillNumber(ctx context.Context) (int64, error) {
	var n int64
	err := s.sdb.NewRaw(`
		INSERT INTO haulage_counters (name, value) VALUES (?, ?)
		ON CONFLICT (name) DO UPDATE SET value = haulage_counters.value + 1
		RETURNING value
	`, billCounter, haulagestore.InitialBillNumber+1).Scan(ctx, &n)
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Store) SetBillNumber(ctx context.Context, n int64) error {
	_, err := s.sdb.NewInsert(&counterModel{Name: billCounter, Value: n}).
		OnConflict("(name) DO UPDATE").
		Set("value = EXCLUDED.value").
		Exec(ctx)
	return err
}

// ==================== Snapshot ====================

func (s *Store) Snapshot(ctx context.Context) (*haulagestore.Snapshot, error) {
	// Stamped before the first read so that a later snapshot never carries
	// an earlier time.
	snap := &haulagestore.Snapshot{TakenAt: time.Now().UTC()}

	var err error
	if snap.Clients, err = s.ListClients(ctx, client.ListOpts{}); err != nil {
		return nil, fmt.Errorf("snapshot clients: %w", err)
	}
	if snap.Bills, err = s.ListBills(ctx, bill.ListOpts{}); err != nil {
		return nil, fmt.Errorf("snapshot bills: %w", err)
	}
	if snap.Payments, err = s.ListPayments(ctx, payment.ListOpts{}); err != nil {
		return nil, fmt.Errorf("snapshot payments: %w", err)
	}
	snap.Settings, err = s.GetSettings(ctx)
	if err != nil && !errors.Is(err, haulage.ErrSettingsNotFound) {
		return nil, fmt.Errorf("snapshot settings: %w", err)
	}
	if snap.BillCounter, err = s.CurrentBillNumber(ctx); err != nil {
		return nil, fmt.Errorf("snapshot counter: %w", err)
	}
	return snap, nil
}

// Restore empties every table and reloads it from snap. It is not atomic;
// a failure part way leaves a partial ledger and should be retried.
func (s *Store) Restore(ctx context.Context, snap *haulagestore.Snapshot) error {
	for _, model := range []interface{}{
		(*paymentModel)(nil), (*billModel)(nil), (*clientModel)(nil), (*settingsModel)(nil),
	} {
		if _, err := s.sdb.NewDelete(model).Where("1 = 1").Exec(ctx); err != nil {
			return fmt.Errorf("restore: clear: %w", err)
		}
	}

	// Insert oldest first so created_at ordering matches the snapshot.
	for i := len(snap.Clients) - 1; i >= 0; i-- {
		if err := s.CreateClient(ctx, snap.Clients[i]); err != nil {
			return fmt.Errorf("restore client %s: %w", snap.Clients[i].ID, err)
		}
	}
	for i := len(snap.Bills) - 1; i >= 0; i-- {
		if err := s.CreateBill(ctx, snap.Bills[i]); err != nil {
			return fmt.Errorf("restore bill %s: %w", snap.Bills[i].BillNo(), err)
		}
	}
	for i := len(snap.Payments) - 1; i >= 0; i-- {
		if err := s.CreatePayment(ctx, snap.Payments[i]); err != nil {
			return fmt.Errorf("restore payment %s: %w", snap.Payments[i].ID, err)
		}
	}
	if snap.Settings != nil {
		if err := s.SaveSettings(ctx, snap.Settings); err != nil {
			return fmt.Errorf("restore settings: %w", err)
		}
	}
	return s.SetBillNumber(ctx, snap.BillCounter)
}

// ==================== Helpers ====================

type rowsAffected interface {
	RowsAffected() (int64, error)
}

// expectRow maps a statement that touched no rows to notFound.
func expectRow(res rowsAffected, notFound error) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return notFound
	}
	return nil
}

// isNoRows checks for the standard sql.ErrNoRows sentinel.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
