package mongo

import (
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/id"
	"github.com/xraph/haulage/payment"
	"github.com/xraph/haulage/settings"
	"github.com/xraph/haulage/types"
)

// ==================== Client models ====================

type clientModel struct {
	grove.BaseModel `grove:"table:haulage_clients"`

	ID            string    `grove:"id,pk"          bson:"_id"`
	Name          string    `grove:"name"           bson:"name"`
	Address       string    `grove:"address"        bson:"address"`
	Phone         string    `grove:"phone"          bson:"phone"`
	Email         string    `grove:"email"          bson:"email"`
	TotalBills    int       `grove:"total_bills"    bson:"total_bills"`
	TotalAmount   int64     `grove:"total_amount"   bson:"total_amount"`
	PaidAmount    int64     `grove:"paid_amount"    bson:"paid_amount"`
	PendingAmount int64     `grove:"pending_amount" bson:"pending_amount"`
	Currency      string    `grove:"currency"       bson:"currency"`
	CreatedAt     time.Time `grove:"created_at"     bson:"created_at"`
	UpdatedAt     time.Time `grove:"updated_at"     bson:"updated_at"`
}

func toClientModel(c *client.Client) *clientModel {
	return &clientModel{
		ID:            c.ID.String(),
		Name:          c.Name,
		Address:       c.Address,
		Phone:         c.Phone,
		Email:         c.Email,
		TotalBills:    c.TotalBills,
		TotalAmount:   c.TotalAmount.Amount,
		PaidAmount:    c.PaidAmount.Amount,
		PendingAmount: c.PendingAmount.Amount,
		Currency:      currencyOf(c.TotalAmount),
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
}

func fromClientModel(m *clientModel) (*client.Client, error) {
	clientID, err := id.ParseClientID(m.ID)
	if err != nil {
		return nil, err
	}
	return &client.Client{
		Entity:        types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:            clientID,
		Name:          m.Name,
		Address:       m.Address,
		Phone:         m.Phone,
		Email:         m.Email,
		TotalBills:    m.TotalBills,
		TotalAmount:   money(m.TotalAmount, m.Currency),
		PaidAmount:    money(m.PaidAmount, m.Currency),
		PendingAmount: money(m.PendingAmount, m.Currency),
	}, nil
}

// ==================== Bill models ====================

type billModel struct {
	grove.BaseModel `grove:"table:haulage_bills"`

	ID            string      `grove:"id,pk"          bson:"_id"`
	BillNo        int64       `grove:"bill_no"        bson:"bill_no"`
	ClientID      string      `grove:"client_id"      bson:"client_id"`
	ClientName    string      `grove:"client_name"    bson:"client_name"`
	ClientAddress string      `grove:"client_address" bson:"client_address"`
	Date          time.Time   `grove:"date"           bson:"date"`
	Items         []itemModel `grove:"items"          bson:"items"`
	TotalAmount   int64       `grove:"total_amount"   bson:"total_amount"`
	TotalAdvance  int64       `grove:"total_advance"  bson:"total_advance"`
	TotalActual   int64       `grove:"total_actual"   bson:"total_actual"`
	PaidAmount    int64       `grove:"paid_amount"    bson:"paid_amount"`
	PendingAmount int64       `grove:"pending_amount" bson:"pending_amount"`
	Currency      string      `grove:"currency"       bson:"currency"`
	Status        string      `grove:"status"         bson:"status"`
	CreatedAt     time.Time   `grove:"created_at"     bson:"created_at"`
	UpdatedAt     time.Time   `grove:"updated_at"     bson:"updated_at"`
}

type itemModel struct {
	ID          string    `bson:"id"`
	Date        time.Time `bson:"date"`
	VehicleNo   string    `bson:"vehicle_no"`
	LRNo        string    `bson:"lr_no"`
	Particulars string    `bson:"particulars"`
	Qty         int64     `bson:"qty"`
	Rate        int64     `bson:"rate"`
	Amount      int64     `bson:"amount"`
	Advance     int64     `bson:"advance"`
	Actual      int64     `bson:"actual"`
}

func toBillModel(b *bill.Bill) *billModel {
	items := make([]itemModel, len(b.Items))
	for i, it := range b.Items {
		items[i] = itemModel{
			ID:          it.ID.String(),
			Date:        it.Date,
			VehicleNo:   it.VehicleNo,
			LRNo:        it.LRNo,
			Particulars: it.Particulars,
			Qty:         it.Qty,
			Rate:        it.Rate.Amount,
			Amount:      it.Amount.Amount,
			Advance:     it.Advance.Amount,
			Actual:      it.Actual.Amount,
		}
	}
	return &billModel{
		ID:            b.ID.String(),
		BillNo:        b.Number,
		ClientID:      b.ClientID.String(),
		ClientName:    b.ClientName,
		ClientAddress: b.ClientAddress,
		Date:          b.Date,
		Items:         items,
		TotalAmount:   b.TotalAmount.Amount,
		TotalAdvance:  b.TotalAdvance.Amount,
		TotalActual:   b.TotalActual.Amount,
		PaidAmount:    b.PaidAmount.Amount,
		PendingAmount: b.PendingAmount.Amount,
		Currency:      currencyOf(b.TotalAmount),
		Status:        string(b.Status),
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func fromBillModel(m *billModel) (*bill.Bill, error) {
	billID, err := id.ParseBillID(m.ID)
	if err != nil {
		return nil, err
	}
	clientID, err := id.ParseClientID(m.ClientID)
	if err != nil {
		return nil, err
	}

	items := make([]bill.Item, len(m.Items))
	for i, it := range m.Items {
		itemID, err := id.ParseBillItemID(it.ID)
		if err != nil {
			return nil, err
		}
		items[i] = bill.Item{
			ID:          itemID,
			Date:        it.Date.UTC(),
			VehicleNo:   it.VehicleNo,
			LRNo:        it.LRNo,
			Particulars: it.Particulars,
			Qty:         it.Qty,
			Rate:        money(it.Rate, m.Currency),
			Amount:      money(it.Amount, m.Currency),
			Advance:     money(it.Advance, m.Currency),
			Actual:      money(it.Actual, m.Currency),
		}
	}

	return &bill.Bill{
		Entity:        types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:            billID,
		Number:        m.BillNo,
		ClientID:      clientID,
		ClientName:    m.ClientName,
		ClientAddress: m.ClientAddress,
		Date:          m.Date.UTC(),
		Items:         items,
		TotalAmount:   money(m.TotalAmount, m.Currency),
		TotalAdvance:  money(m.TotalAdvance, m.Currency),
		TotalActual:   money(m.TotalActual, m.Currency),
		PaidAmount:    money(m.PaidAmount, m.Currency),
		PendingAmount: money(m.PendingAmount, m.Currency),
		Status:        bill.Status(m.Status),
	}, nil
}

// ==================== Payment models ====================

type paymentModel struct {
	grove.BaseModel `grove:"table:haulage_payments"`

	ID          string    `grove:"id,pk"       bson:"_id"`
	ClientID    string    `grove:"client_id"   bson:"client_id"`
	BillID      string    `grove:"bill_id"     bson:"bill_id"`
	Amount      int64     `grove:"amount"      bson:"amount"`
	Currency    string    `grove:"currency"    bson:"currency"`
	Date        time.Time `grove:"date"        bson:"date"`
	Description string    `grove:"description" bson:"description"`
	CreatedAt   time.Time `grove:"created_at"  bson:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"  bson:"updated_at"`
}

func toPaymentModel(p *payment.Payment) *paymentModel {
	return &paymentModel{
		ID:          p.ID.String(),
		ClientID:    p.ClientID.String(),
		BillID:      p.BillID.String(),
		Amount:      p.Amount.Amount,
		Currency:    currencyOf(p.Amount),
		Date:        p.Date,
		Description: p.Description,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func fromPaymentModel(m *paymentModel) (*payment.Payment, error) {
	paymentID, err := id.ParsePaymentID(m.ID)
	if err != nil {
		return nil, err
	}
	clientID, err := id.ParseClientID(m.ClientID)
	if err != nil {
		return nil, err
	}
	billID, err := id.ParseBillID(m.BillID)
	if err != nil {
		return nil, err
	}
	return &payment.Payment{
		Entity:      types.Entity{CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt},
		ID:          paymentID,
		ClientID:    clientID,
		BillID:      billID,
		Amount:      money(m.Amount, m.Currency),
		Date:        m.Date.UTC(),
		Description: m.Description,
	}, nil
}

// ==================== Settings and counter models ====================

const settingsKey = "default"

type settingsModel struct {
	grove.BaseModel `grove:"table:haulage_company_settings"`

	ID         string    `grove:"id,pk"       bson:"_id"`
	Name       string    `grove:"name"        bson:"name"`
	Address    string    `grove:"address"     bson:"address"`
	Phone      string    `grove:"phone"       bson:"phone"`
	Phone2     string    `grove:"phone2"      bson:"phone2"`
	Email      string    `grove:"email"       bson:"email"`
	PANNo      string    `grove:"pan_no"      bson:"pan_no"`
	BankName   string    `grove:"bank_name"   bson:"bank_name"`
	AccountNo  string    `grove:"account_no"  bson:"account_no"`
	IFSCCode   string    `grove:"ifsc_code"   bson:"ifsc_code"`
	BankBranch string    `grove:"bank_branch" bson:"bank_branch"`
	Proprietor string    `grove:"proprietor"  bson:"proprietor"`
	Logo       string    `grove:"logo"        bson:"logo"`
	UpdatedAt  time.Time `grove:"updated_at"  bson:"updated_at"`
}

func toSettingsModel(s *settings.CompanySettings) *settingsModel {
	return &settingsModel{
		ID:         settingsKey,
		Name:       s.Name,
		Address:    s.Address,
		Phone:      s.Phone,
		Phone2:     s.Phone2,
		Email:      s.Email,
		PANNo:      s.PANNo,
		BankName:   s.BankName,
		AccountNo:  s.AccountNo,
		IFSCCode:   s.IFSCCode,
		BankBranch: s.BankBranch,
		Proprietor: s.Proprietor,
		Logo:       s.Logo,
		UpdatedAt:  s.UpdatedAt,
	}
}

func fromSettingsModel(m *settingsModel) *settings.CompanySettings {
	return &settings.CompanySettings{
		Name:       m.Name,
		Address:    m.Address,
		Phone:      m.Phone,
		Phone2:     m.Phone2,
		Email:      m.Email,
		PANNo:      m.PANNo,
		BankName:   m.BankName,
		AccountNo:  m.AccountNo,
		IFSCCode:   m.IFSCCode,
		BankBranch: m.BankBranch,
		Proprietor: m.Proprietor,
		Logo:       m.Logo,
		UpdatedAt:  m.UpdatedAt,
	}
}

// counterDoc is one document of haulage_counters.
type counterDoc struct {
	Name  string `bson:"_id"`
	Value int64  `bson:"value"`
}

// ==================== Helpers ====================

func money(amount int64, currency string) types.Money {
	if currency == "" {
		currency = types.DefaultCurrency
	}
	return types.Money{Amount: amount, Currency: currency}
}

func currencyOf(m types.Money) string {
	if m.Currency == "" {
		return types.DefaultCurrency
	}
	return m.Currency
}
