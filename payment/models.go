package payment

import (
	"time"

	"github.com/xraph/haulage/id"
	"github.com/xraph/haulage/types"
)

// Payment is the share of one received payment applied to a single bill.
type Payment struct {
	types.Entity
	ID          id.PaymentID `json:"id"`
	ClientID    id.ClientID  `json:"client_id"`
	BillID      id.BillID    `json:"bill_id"`
	Amount      types.Money  `json:"amount"`
	Date        time.Time    `json:"date"`
	Description string       `json:"description"`
}

// Input is a payment received from a client, before allocation.
type Input struct {
	ClientID    id.ClientID `json:"client_id"`
	Amount      types.Money `json:"amount" validate:"gt=0,maxamount,inr"`
	Date        time.Time   `json:"date" validate:"required"`
	Description string      `json:"description"`
}
