package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/xraph/grove"

	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/id"
	"github.com/xraph/haulage/payment"
	"github.com/xraph/haulage/settings"
	"github.com/xraph/haulage/types"
)

// Amounts are stored in paise, one currency per row.

// ==================== Client models ====================

type clientModel struct {
	grove.BaseModel `grove:"table:haulage_clients"`

	ID            string    `grove:"id,pk"`
	Name          string    `grove:"name"`
	Address       string    `grove:"address"`
	Phone         string    `grove:"phone"`
	Email         string    `grove:"email"`
	TotalBills    int       `grove:"total_bills"`
	TotalAmount   int64     `grove:"total_amount"`
	PaidAmount    int64     `grove:"paid_amount"`
	PendingAmount int64     `grove:"pending_amount"`
	Currency      string    `grove:"currency"`
	CreatedAt     time.Time `grove:"created_at"`
	UpdatedAt     time.Time `grove:"updated_at"`
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

	ID            string          `grove:"id,pk"`
	BillNo        int64           `grove:"bill_no"`
	ClientID      string          `grove:"client_id"`
	ClientName    string          `grove:"client_name"`
	ClientAddress string          `grove:"client_address"`
	Date          time.Time       `grove:"date"`
	Items         json.RawMessage `grove:"items"`
	TotalAmount   int64           `grove:"total_amount"`
	TotalAdvance  int64           `grove:"total_advance"`
	TotalActual   int64           `grove:"total_actual"`
	PaidAmount    int64           `grove:"paid_amount"`
	PendingAmount int64           `grove:"pending_amount"`
	Currency      string          `grove:"currency"`
	Status        string          `grove:"status"`
	CreatedAt     time.Time       `grove:"created_at"`
	UpdatedAt     time.Time       `grove:"updated_at"`
}

func toBillModel(b *bill.Bill) (*billModel, error) {
	items, err := json.Marshal(b.Items)
	if err != nil {
		return nil, fmt.Errorf("encode items of bill %s: %w", b.BillNo(), err)
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
	}, nil
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
	var items []bill.Item
	if len(m.Items) > 0 {
		if err := json.Unmarshal(m.Items, &items); err != nil {
			return nil, fmt.Errorf("decode items of bill %d: %w", m.BillNo, err)
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

	ID          string    `grove:"id,pk"`
	ClientID    string    `grove:"client_id"`
	BillID      string    `grove:"bill_id"`
	Amount      int64     `grove:"amount"`
	Currency    string    `grove:"currency"`
	Date        time.Time `grove:"date"`
	Description string    `grove:"description"`
	CreatedAt   time.Time `grove:"created_at"`
	UpdatedAt   time.Time `grove:"updated_at"`
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

// settingsKey is the primary key of the single settings row.
const settingsKey = "default"

type settingsModel struct {
	grove.BaseModel `grove:"table:haulage_company_settings"`

	ID         string    `grove:"id,pk"`
	Name       string    `grove:"name"`
	Address    string    `grove:"address"`
	Phone      string    `grove:"phone"`
	Phone2     string    `grove:"phone2"`
	Email      string    `grove:"email"`
	PANNo      string    `grove:"pan_no"`
	BankName   string    `grove:"bank_name"`
	AccountNo  string    `grove:"account_no"`
	IFSCCode   string    `grove:"ifsc_code"`
	BankBranch string    `grove:"bank_branch"`
	Proprietor string    `grove:"proprietor"`
	Logo       string    `grove:"logo"`
	UpdatedAt  time.Time `grove:"updated_at"`
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

// billCounter names the row of haulage_counters holding the last bill number.
const billCounter = "bill"

type counterModel struct {
	grove.BaseModel `grove:"table:haulage_counters"`

	Name  string `grove:"name,pk"`
	Value int64  `grove:"value"`
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
