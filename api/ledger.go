package api

import (
	"net/http"

	"github.com/xraph/haulage"
	"github.com/xraph/haulage/settings"
	"github.com/xraph/haulage/store"
)

func (h *Handler) getSettings(w http.ResponseWriter, r *http.Request) {
	s, err := h.ledger.GetSettings(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *Handler) updateSettings(w http.ResponseWriter, r *http.Request) {
	var in settings.CompanySettings
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	s, err := h.ledger.UpdateSettings(r.Context(), &in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

type counterRequest struct {
	Value *int64 `json:"value"`
}

// setCounter overwrites the bill counter; the next bill gets value+1.
func (h *Handler) setCounter(w http.ResponseWriter, r *http.Request) {
	var req counterRequest
	if err := decode(r, &req); err != nil {
		h.fail(w, r, err)
		return
	}
	if req.Value == nil {
		h.fail(w, r, haulage.ValidationError{Field: "value", Message: "is required"})
		return
	}
	if err := h.ledger.SetBillNumber(r.Context(), *req.Value); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"value": *req.Value, "next": *req.Value + 1})
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	st, err := h.ledger.Dashboard(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.ledger.Snapshot(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// restore replaces the whole ledger with the posted snapshot.
func (h *Handler) restore(w http.ResponseWriter, r *http.Request) {
	var snap store.Snapshot
	if err := decode(r, &snap); err != nil {
		h.fail(w, r, err)
		return
	}
	if err := h.ledger.Restore(r.Context(), &snap); err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"clients":  len(snap.Clients),
		"bills":    len(snap.Bills),
		"payments": len(snap.Payments),
	})
}
