package client

import (
	"strings"

	"github.com/xraph/haulage/id"
	"github.com/xraph/haulage/types"
)

type Client struct {
	types.Entity
	ID      id.ClientID `json:"id"`
	Name    string      `json:"name"`
	Address string      `json:"address"`
	Phone   string      `json:"phone"`
	Email   string      `json:"email"`

	// Running totals. PendingAmount tracks TotalAmount - PaidAmount.
	TotalBills    int         `json:"total_bills"`
	TotalAmount   types.Money `json:"total_amount"`
	PaidAmount    types.Money `json:"paid_amount"`
	PendingAmount types.Money `json:"pending_amount"`
}

// Input carries the contact fields a caller may set on a client.
type Input struct {
	Name    string `json:"name" validate:"required"`
	Address string `json:"address" validate:"required"`
	Phone   string `json:"phone"`
	Email   string `json:"email" validate:"omitempty,email"`
}

// Normalize trims surrounding whitespace from every field.
func (in Input) Normalize() Input {
	return Input{
		Name:    strings.TrimSpace(in.Name),
		Address: strings.TrimSpace(in.Address),
		Phone:   strings.TrimSpace(in.Phone),
		Email:   strings.TrimSpace(in.Email),
	}
}

// New builds a client with zeroed totals from validated input.
func New(in Input) *Client {
	in = in.Normalize()
	return &Client{
		Entity:        types.NewEntity(),
		ID:            id.NewClientID(),
		Name:          in.Name,
		Address:       in.Address,
		Phone:         in.Phone,
		Email:         in.Email,
		TotalAmount:   types.Zero(types.DefaultCurrency),
		PaidAmount:    types.Zero(types.DefaultCurrency),
		PendingAmount: types.Zero(types.DefaultCurrency),
	}
}

// SetContact overwrites the contact fields and leaves totals alone.
func (c *Client) SetContact(in Input) {
	in = in.Normalize()
	c.Name, c.Address, c.Phone, c.Email = in.Name, in.Address, in.Phone, in.Email
}

// AddBill records a newly issued bill whose actual due is totalActual.
func (c *Client) AddBill(totalActual types.Money) {
	c.TotalBills++
	c.TotalAmount = c.TotalAmount.Add(totalActual)
	c.PendingAmount = c.PendingAmount.Add(totalActual)
}

// ReviseBill moves the totals from a bill's old actual due to its new one.
func (c *Client) ReviseBill(oldActual, newActual types.Money) {
	delta := newActual.Subtract(oldActual)
	c.TotalAmount = c.TotalAmount.Add(delta)
	c.PendingAmount = c.PendingAmount.Add(delta)
}

// RemoveBill reverses a deleted bill. Every total is floored at zero, so a
// client whose aggregates have already drifted never goes negative here.
func (c *Client) RemoveBill(totalActual, pending types.Money) {
	c.TotalBills--
	if c.TotalBills < 0 {
		c.TotalBills = 0
	}
	c.TotalAmount = c.TotalAmount.Subtract(totalActual).FloorZero()
	c.PendingAmount = c.PendingAmount.Subtract(pending).FloorZero()
}

// ApplyPayment credits the full payment amount. PendingAmount is not
// floored: an overpayment leaves it negative.
func (c *Client) ApplyPayment(amount types.Money) {
	c.PaidAmount = c.PaidAmount.Add(amount)
	c.PendingAmount = c.PendingAmount.Subtract(amount)
}

// Balanced reports whether PendingAmount equals TotalAmount - PaidAmount.
func (c *Client) Balanced() bool {
	return c.PendingAmount.Equal(c.TotalAmount.Subtract(c.PaidAmount))
}
