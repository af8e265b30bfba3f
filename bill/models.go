package bill

import (
	"strconv"
	"time"

	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/id"
	"github.com/xraph/haulage/types"
)

type Status string

const (
	StatusPending Status = "pending"
	StatusPartial Status = "partial"
	StatusPaid    Status = "paid"
)

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusPartial, StatusPaid:
		return true
	}
	return false
}

type Bill struct {
	types.Entity
	ID            id.BillID   `json:"id"`
	Number        int64       `json:"number"`
	ClientID      id.ClientID `json:"client_id"`
	ClientName    string      `json:"client_name"`
	ClientAddress string      `json:"client_address"`
	Date          time.Time   `json:"date"`
	Items         []Item      `json:"items"`
	TotalAmount   types.Money `json:"total_amount"`
	TotalAdvance  types.Money `json:"total_advance"`
	TotalActual   types.Money `json:"total_actual"`
	PaidAmount    types.Money `json:"paid_amount"`
	PendingAmount types.Money `json:"pending_amount"`
	Status        Status      `json:"status"`
}

type Item struct {
	ID          id.BillItemID `json:"id"`
	Date        time.Time     `json:"date"`
	VehicleNo   string        `json:"vehicle_no"`
	LRNo        string        `json:"lr_no"`
	Particulars string        `json:"particulars"`
	Qty         int64         `json:"qty"`
	Rate        types.Money   `json:"rate"`
	Amount      types.Money   `json:"amount"`
	Advance     types.Money   `json:"advance"`
	Actual      types.Money   `json:"actual"`
}

// BillNo renders the bill number the way it is printed on documents.
func (b *Bill) BillNo() string { return strconv.FormatInt(b.Number, 10) }

// Clone returns a deep copy, including the item slice.
func (b *Bill) Clone() *Bill {
	cp := *b
	cp.Items = append([]Item(nil), b.Items...)
	return &cp
}

// ItemInput is one line of a bill as entered by the operator. Amount and
// actual are always derived and cannot be supplied.
type ItemInput struct {
	Date        time.Time   `json:"date"`
	VehicleNo   string      `json:"vehicle_no"`
	LRNo        string      `json:"lr_no"`
	Particulars string      `json:"particulars"`
	Qty         int64       `json:"qty" validate:"gte=1"`
	Rate        types.Money `json:"rate" validate:"gte=0,maxamount,inr"`
	Advance     types.Money `json:"advance" validate:"gte=0,maxamount,inr"`
}

// EditInput replaces the mutable fields of an existing bill.
type EditInput struct {
	Date  time.Time   `json:"date" validate:"required"`
	Items []ItemInput `json:"items" validate:"required,min=1,dive"`
}

// IssueInput describes a new bill. Exactly one of ClientID or NewClient is
// set; NewClient creates the client inline.
type IssueInput struct {
	ClientID  id.ClientID   `json:"client_id"`
	NewClient *client.Input `json:"new_client,omitempty"`
	Date      time.Time     `json:"date" validate:"required"`
	Items     []ItemInput   `json:"items" validate:"required,min=1,dive"`
}
