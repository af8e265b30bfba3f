package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/xraph/grove"
	"github.com/xraph/grove/drivers/mongodriver"

	"github.com/xraph/haulage"
	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/id"
	"github.com/xraph/haulage/payment"
	"github.com/xraph/haulage/settings"
	haulagestore "github.com/xraph/haulage/store"
)

// Collection name constants.
const (
	colClients  = "haulage_clients"
	colBills    = "haulage_bills"
	colPayments = "haulage_payments"
	colSettings = "haulage_company_settings"
	colCounters = "haulage_counters"
)

const billCounter = "bill"

// compile-time interface check
var _ haulagestore.Store = (*Store)(nil)

// Store implements store.Store using MongoDB via Grove ORM.
type Store struct {
	db  *grove.DB
	mdb *mongodriver.MongoDB
}

// New creates a new MongoDB store backed by Grove ORM.
func New(db *grove.DB) *Store {
	return &Store{
		db:  db,
		mdb: mongodriver.Unwrap(db),
	}
}

// DB returns the underlying grove database for direct access.
func (s *Store) DB() *grove.DB { return s.db }

// Migrate creates indexes for all haulage collections and seeds the bill
// counter.
func (s *Store) Migrate(ctx context.Context) error {
	for col, models := range migrationIndexes() {
		if len(models) == 0 {
			continue
		}
		if _, err := s.mdb.Collection(col).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("haulage/mongo: migrate %s indexes: %w", col, err)
		}
	}
	if err := s.seedCounter(ctx); err != nil {
		return fmt.Errorf("haulage/mongo: seed counter: %w", err)
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
	if _, err := s.mdb.NewInsert(toClientModel(c)).Exec(ctx); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return haulage.ErrAlreadyExists
		}
		return fmt.Errorf("haulage/mongo: create client: %w", err)
	}
	return nil
}

func (s *Store) GetClient(ctx context.Context, clientID id.ClientID) (*client.Client, error) {
	var m clientModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": clientID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, haulage.ErrClientNotFound
		}
		return nil, fmt.Errorf("haulage/mongo: get client: %w", err)
	}
	return fromClientModel(&m)
}

func (s *Store) UpdateClient(ctx context.Context, c *client.Client) error {
	m := toClientModel(c)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("haulage/mongo: update client: %w", err)
	}
	if res.MatchedCount() == 0 {
		return haulage.ErrClientNotFound
	}
	return nil
}

func (s *Store) ListClients(ctx context.Context, opts client.ListOpts) ([]*client.Client, error) {
	var models []clientModel
	filter := bson.M{}
	if term := strings.TrimSpace(opts.Search); term != "" {
		quoted := regexp.QuoteMeta(term)
		filter["$or"] = bson.A{
			bson.M{"name": bson.M{"$regex": quoted, "$options": "i"}},
			bson.M{"phone": bson.M{"$regex": quoted}},
		}
	}
	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}})
	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("haulage/mongo: list clients: %w", err)
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
	if _, err := s.mdb.NewInsert(toBillModel(b)).Exec(ctx); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return haulage.ErrAlreadyExists
		}
		return fmt.Errorf("haulage/mongo: create bill: %w", err)
	}
	return nil
}

func (s *Store) GetBill(ctx context.Context, billID id.BillID) (*bill.Bill, error) {
	var m billModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": billID.String()}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, haulage.ErrBillNotFound
		}
		return nil, fmt.Errorf("haulage/mongo: get bill: %w", err)
	}
	return fromBillModel(&m)
}

func (s *Store) UpdateBill(ctx context.Context, b *bill.Bill) error {
	m := toBillModel(b)
	res, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("haulage/mongo: update bill: %w", err)
	}
	if res.MatchedCount() == 0 {
		return haulage.ErrBillNotFound
	}
	return nil
}

func (s *Store) DeleteBill(ctx context.Context, billID id.BillID) error {
	res, err := s.mdb.NewDelete((*billModel)(nil)).
		Filter(bson.M{"_id": billID.String()}).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("haulage/mongo: delete bill: %w", err)
	}
	if res.DeletedCount() == 0 {
		return haulage.ErrBillNotFound
	}
	return nil
}

func (s *Store) ListBills(ctx context.Context, opts bill.ListOpts) ([]*bill.Bill, error) {
	var models []billModel

	filter := bson.M{}
	if !opts.ClientID.IsNil() {
		filter["client_id"] = opts.ClientID.String()
	}
	if opts.Status != "" {
		filter["status"] = string(opts.Status)
	}
	if opts.PendingOnly {
		filter["pending_amount"] = bson.M{"$gt": 0}
	}
	if dates := dateRange(opts.Start, opts.End); dates != nil {
		filter["date"] = dates
	}
	if term := strings.TrimSpace(opts.Search); term != "" {
		quoted := regexp.QuoteMeta(term)
		filter["$or"] = bson.A{
			bson.M{"client_name": bson.M{"$regex": quoted, "$options": "i"}},
			bson.M{"$expr": bson.M{"$regexMatch": bson.M{
				"input": bson.M{"$toString": "$bill_no"},
				"regex": quoted,
			}}},
		}
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}, {Key: "bill_no", Value: -1}})
	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("haulage/mongo: list bills: %w", err)
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
	if _, err := s.mdb.NewInsert(toPaymentModel(p)).Exec(ctx); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return haulage.ErrAlreadyExists
		}
		return fmt.Errorf("haulage/mongo: create payment: %w", err)
	}
	return nil
}

func (s *Store) ListPayments(ctx context.Context, opts payment.ListOpts) ([]*payment.Payment, error) {
	var models []paymentModel

	filter := bson.M{}
	if !opts.ClientID.IsNil() {
		filter["client_id"] = opts.ClientID.String()
	}
	if !opts.BillID.IsNil() {
		filter["bill_id"] = opts.BillID.String()
	}
	if dates := dateRange(opts.Start, opts.End); dates != nil {
		filter["date"] = dates
	}

	q := s.mdb.NewFind(&models).
		Filter(filter).
		Sort(bson.D{{Key: "created_at", Value: -1}})
	if opts.Limit > 0 {
		q = q.Limit(int64(opts.Limit))
	}
	if opts.Offset > 0 {
		q = q.Skip(int64(opts.Offset))
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("haulage/mongo: list payments: %w", err)
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
	var m settingsModel
	err := s.mdb.NewFind(&m).
		Filter(bson.M{"_id": settingsKey}).
		Scan(ctx)
	if err != nil {
		if isNoDocuments(err) {
			return nil, haulage.ErrSettingsNotFound
		}
		return nil, fmt.Errorf("haulage/mongo: get settings: %w", err)
	}
	return fromSettingsModel(&m), nil
}

func (s *Store) SaveSettings(ctx context.Context, cs *settings.CompanySettings) error {
	m := toSettingsModel(cs)
	_, err := s.mdb.NewUpdate(m).
		Filter(bson.M{"_id": m.ID}).
		SetUpdate(bson.M{"$set": bson.M{
			"name":        m.Name,
			"address":     m.Address,
			"phone":       m.Phone,
			"phone2":      m.Phone2,
			"email":       m.Email,
			"pan_no":      m.PANNo,
			"bank_name":   m.BankName,
			"account_no":  m.AccountNo,
			"ifsc_code":   m.IFSCCode,
			"bank_branch": m.BankBranch,
			"proprietor":  m.Proprietor,
			"logo":        m.Logo,
			"updated_at":  m.UpdatedAt,
		}}).
		Upsert().
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("haulage/mongo: save settings: %w", err)
	}
	return nil
}

// ==================== Sequence ====================

func (s *Store) CurrentBillNumber(ctx context.Context) (int64, error) {
	var doc counterDoc
	err := s.mdb.Collection(colCounters).
		FindOne(ctx, bson.M{"_id": billCounter}).
		Decode(&doc)
	if err != nil {
		if isNoDocuments(err) {
			return haulagestore.InitialBillNumber, nil
		}
		return 0, fmt.Errorf("haulage/mongo: current bill number: %w", err)
	}
	return doc.Value, nil
}

// NextBillNumber increments the counter document with $inc. The server
// applies the update atomically, so concurrent processes never share a number.
func (s *Store) NextBillNumber(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	for attempt := 0; attempt < 2; attempt++ {
		var doc counterDoc
		err := s.mdb.Collection(colCounters).
			FindOneAndUpdate(ctx, bson.M{"_id": billCounter}, bson.M{"$inc": bson.M{"value": 1}}, opts).
			Decode(&doc)
		if err == nil {
			return doc.Value, nil
		}
		if !isNoDocuments(err) {
			return 0, fmt.Errorf("haulage/mongo: next bill number: %w", err)
		}
		if err := s.seedCounter(ctx); err != nil {
			return 0, fmt.Errorf("haulage/mongo: next bill number: %w", err)
		}
	}
	return 0, fmt.Errorf("haulage/mongo: next bill number: counter missing after seeding")
}

func (s *Store) SetBillNumber(ctx context.Context, n int64) error {
	_, err := s.mdb.Collection(colCounters).UpdateOne(ctx,
		bson.M{"_id": billCounter},
		bson.M{"$set": bson.M{"value": n}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("haulage/mongo: set bill number: %w", err)
	}
	return nil
}

// seedCounter creates the counter at InitialBillNumber unless it exists.
func (s *Store) seedCounter(ctx context.Context) error {
	_, err := s.mdb.Collection(colCounters).UpdateOne(ctx,
		bson.M{"_id": billCounter},
		bson.M{"$setOnInsert": bson.M{"value": haulagestore.InitialBillNumber}},
		options.UpdateOne().SetUpsert(true),
	)
	return err
}

// ==================== Snapshot ====================

func (s *Store) Snapshot(ctx context.Context) (*haulagestore.Snapshot, error) {
	// Stamped before the first read so that a later snapshot never carries
	// an earlier time.
	snap := &haulagestore.Snapshot{TakenAt: time.Now().UTC()}

	var err error
	if snap.Clients, err = s.ListClients(ctx, client.ListOpts{}); err != nil {
		return nil, err
	}
	if snap.Bills, err = s.ListBills(ctx, bill.ListOpts{}); err != nil {
		return nil, err
	}
	if snap.Payments, err = s.ListPayments(ctx, payment.ListOpts{}); err != nil {
		return nil, err
	}
	snap.Settings, err = s.GetSettings(ctx)
	if err != nil && !errors.Is(err, haulage.ErrSettingsNotFound) {
		return nil, err
	}
	if snap.BillCounter, err = s.CurrentBillNumber(ctx); err != nil {
		return nil, err
	}
	return snap, nil
}

// Restore empties every collection and reloads it from snap. It is not
// atomic; a failure part way leaves a partial ledger and should be retried.
func (s *Store) Restore(ctx context.Context, snap *haulagestore.Snapshot) error {
	for _, col := range []string{colPayments, colBills, colClients, colSettings} {
		if _, err := s.mdb.Collection(col).DeleteMany(ctx, bson.M{}); err != nil {
			return fmt.Errorf("haulage/mongo: restore: clear %s: %w", col, err)
		}
	}

	for i := len(snap.Clients) - 1; i >= 0; i-- {
		if err := s.CreateClient(ctx, snap.Clients[i]); err != nil {
			return fmt.Errorf("haulage/mongo: restore client %s: %w", snap.Clients[i].ID, err)
		}
	}
	for i := len(snap.Bills) - 1; i >= 0; i-- {
		if err := s.CreateBill(ctx, snap.Bills[i]); err != nil {
			return fmt.Errorf("haulage/mongo: restore bill %s: %w", snap.Bills[i].BillNo(), err)
		}
	}
	for i := len(snap.Payments) - 1; i >= 0; i-- {
		if err := s.CreatePayment(ctx, snap.Payments[i]); err != nil {
			return fmt.Errorf("haulage/mongo: restore payment %s: %w", snap.Payments[i].ID, err)
		}
	}
	if snap.Settings != nil {
		if err := s.SaveSettings(ctx, snap.Settings); err != nil {
			return err
		}
	}
	return s.SetBillNumber(ctx, snap.BillCounter)
}

// ==================== Helpers ====================

func dateRange(start, end time.Time) bson.M {
	if start.IsZero() && end.IsZero() {
		return nil
	}
	r := bson.M{}
	if !start.IsZero() {
		r["$gte"] = start
	}
	if !end.IsZero() {
		r["$lte"] = end
	}
	return r
}

// isNoDocuments checks if an error wraps mongo.ErrNoDocuments.
func isNoDocuments(err error) bool {
	return errors.Is(err, mongo.ErrNoDocuments)
}

// migrationIndexes returns the index definitions for all haulage collections.
func migrationIndexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		colClients: {
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		colBills: {
			{
				Keys:    bson.D{{Key: "bill_no", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
			{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "date", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
			{Keys: bson.D{{Key: "created_at", Value: -1}}},
		},
		colPayments: {
			{Keys: bson.D{{Key: "client_id", Value: 1}, {Key: "date", Value: 1}}},
			{Keys: bson.D{{Key: "bill_id", Value: 1}}},
		},
	}
}
