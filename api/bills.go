package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/xraph/haulage"
	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/id"
	"github.com/xraph/haulage/types"
)

type itemRequest struct {
	Date        string      `json:"date"`
	VehicleNo   string      `json:"vehicle_no"`
	LRNo        string      `json:"lr_no"`
	Particulars string      `json:"particulars"`
	Qty         int64       `json:"qty"`
	Rate        types.Money `json:"rate"`
	Advance     types.Money `json:"advance"`
}

type issueRequest struct {
	ClientID  string        `json:"client_id"`
	NewClient *client.Input `json:"new_client,omitempty"`
	Date      string        `json:"date"`
	Items     []itemRequest `json:"items"`
}

type editRequest struct {
	Date  string        `json:"date"`
	Items []itemRequest `json:"items"`
}

func (req issueRequest) input() (bill.IssueInput, error) {
	cid, err := optionalID(req.ClientID, id.PrefixClient, "client_id")
	if err != nil {
		return bill.IssueInput{}, err
	}
	date, items, err := billLines(req.Date, req.Items)
	if err != nil {
		return bill.IssueInput{}, err
	}
	return bill.IssueInput{ClientID: cid, NewClient: req.NewClient, Date: date, Items: items}, nil
}

func (req editRequest) input() (bill.EditInput, error) {
	date, items, err := billLines(req.Date, req.Items)
	if err != nil {
		return bill.EditInput{}, err
	}
	return bill.EditInput{Date: date, Items: items}, nil
}

func billLines(dateStr string, reqs []itemRequest) (time.Time, []bill.ItemInput, error) {
	date, err := parseDate(dateStr, "date")
	if err != nil {
		return date, nil, err
	}
	items := make([]bill.ItemInput, 0, len(reqs))
	for i, it := range reqs {
		d, err := parseDate(it.Date, fmt.Sprintf("items[%d].date", i))
		if err != nil {
			return date, nil, err
		}
		items = append(items, bill.ItemInput{
			Date:        d,
			VehicleNo:   it.VehicleNo,
			LRNo:        it.LRNo,
			Particulars: it.Particulars,
			Qty:         it.Qty,
			Rate:        it.Rate,
			Advance:     it.Advance,
		})
	}
	return date, items, nil
}

func (h *Handler) listBills(w http.ResponseWriter, r *http.Request) {
	opts, err := billFilter(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	bills, err := h.ledger.ListBills(r.Context(), opts)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if bills == nil {
		bills = []*bill.Bill{}
	}
	writeJSON(w, http.StatusOK, bills)
}

func billFilter(r *http.Request) (bill.ListOpts, error) {
	var (
		opts bill.ListOpts
		err  error
	)
	q := r.URL.Query()
	if opts.ClientID, err = optionalID(q.Get("client_id"), id.PrefixClient, "client_id"); err != nil {
		return opts, err
	}
	if s := q.Get("status"); s != "" {
		opts.Status = bill.Status(strings.ToLower(s))
		if !opts.Status.Valid() {
			return opts, haulage.ValidationError{Field: "status", Message: fmt.Sprintf("unknown status %q", s)}
		}
	}
	if s := q.Get("pending"); s != "" {
		if opts.PendingOnly, err = strconv.ParseBool(s); err != nil {
			return opts, haulage.ValidationError{Field: "pending", Message: "must be true or false"}
		}
	}
	if opts.Start, opts.End, err = dateRange(r); err != nil {
		return opts, err
	}
	opts.Search = strings.TrimSpace(q.Get("q"))
	opts.Limit, opts.Offset, err = paging(r)
	return opts, err
}

func (h *Handler) issueBill(w http.ResponseWriter, r *http.Request) {
	var req issueRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	res, err := h.ledger.IssueBill(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

func (h *Handler) getBill(w http.ResponseWriter, r *http.Request) {
	bid, err := pathID(r, id.PrefixBill)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	b, err := h.ledger.GetBill(r.Context(), bid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) updateBill(w http.ResponseWriter, r *http.Request) {
	bid, err := pathID(r, id.PrefixBill)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var req editRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		h.fail(w, r, err)
		return
	}
	b, err := h.ledger.UpdateBill(r.Context(), bid, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) deleteBill(w http.ResponseWriter, r *http.Request) {
	bid, err := pathID(r, id.PrefixBill)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.ledger.DeleteBill(r.Context(), bid); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": bid.String()})
}

// renderBill streams the bill through the formatter named by ?format=,
// xlsx by default.
func (h *Handler) renderBill(w http.ResponseWriter, r *http.Request) {
	bid, err := pathID(r, id.PrefixBill)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = "xlsx"
	}

	b, err := h.ledger.GetBill(r.Context(), bid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := h.ledger.RenderBill(r.Context(), bid, format, &buf); err != nil {
		h.fail(w, r, err)
		return
	}

	attach(w, h.ledger.BillContentType(format), fmt.Sprintf("bill-%s.%s", b.BillNo(), format))
	_, _ = buf.WriteTo(w)
}
