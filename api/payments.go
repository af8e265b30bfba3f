package api

import (
	"net/http"

	"github.com/xraph/haulage/id"
	"github.com/xraph/haulage/payment"
	"github.com/xraph/haulage/types"
)

type paymentRequest struct {
	ClientID    string      `json:"client_id"`
	Amount      types.Money `json:"amount"`
	Date        string      `json:"date"`
	Description string      `json:"description"`
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	cid, err := optionalID(req.ClientID, id.PrefixClient, "client_id")
	if err != nil {
		h.fail(w, r, err)
		return
	}
	date, err := parseDate(req.Date, "date")
	if err != nil {
		h.fail(w, r, err)
		return
	}

	res, err := h.ledger.RecordPayment(r.Context(), payment.Input{
		ClientID:    cid,
		Amount:      req.Amount,
		Date:        date,
		Description: req.Description,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	var (
		opts payment.ListOpts
		err  error
	)
	q := r.URL.Query()
	if opts.ClientID, err = optionalID(q.Get("client_id"), id.PrefixClient, "client_id"); err != nil {
		h.fail(w, r, err)
		return
	}
	if opts.BillID, err = optionalID(q.Get("bill_id"), id.PrefixBill, "bill_id"); err != nil {
		h.fail(w, r, err)
		return
	}
	if opts.Start, opts.End, err = dateRange(r); err != nil {
		h.fail(w, r, err)
		return
	}
	if opts.Limit, opts.Offset, err = paging(r); err != nil {
		h.fail(w, r, err)
		return
	}

	pays, err := h.ledger.ListPayments(r.Context(), opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if pays == nil {
		pays = []*payment.Payment{}
	}
	writeJSON(w, http.StatusOK, pays)
}
