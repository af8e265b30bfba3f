package api

import (
	"bytes"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/xraph/haulage"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/export"
	"github.com/xraph/haulage/id"
)

func (h *Handler) listClients(w http.ResponseWriter, r *http.Request) {
	limit, offset, err := paging(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	clients, err := h.ledger.ListClients(r.Context(), client.ListOpts{
		Search: strings.TrimSpace(r.URL.Query().Get("q")),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if clients == nil {
		clients = []*client.Client{}
	}
	writeJSON(w, http.StatusOK, clients)
}

func (h *Handler) createClient(w http.ResponseWriter, r *http.Request) {
	var in client.Input
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.ledger.AddClient(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) getClient(w http.ResponseWriter, r *http.Request) {
	cid, err := pathID(r, id.PrefixClient)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.ledger.GetClient(r.Context(), cid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) updateClient(w http.ResponseWriter, r *http.Request) {
	cid, err := pathID(r, id.PrefixClient)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var in client.Input
	if err := decode(r, &in); err != nil {
		h.fail(w, r, err)
		return
	}
	c, err := h.ledger.UpdateClient(r.Context(), cid, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// exportClient serves the client statement as an attachment. The whole
// document is built before the first byte is written so a failure can
// still be reported in the envelope.
func (h *Handler) exportClient(w http.ResponseWriter, r *http.Request) {
	cid, err := pathID(r, id.PrefixClient)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	format := strings.ToLower(chi.URLParam(r, "format"))
	ct := export.ContentType(format)
	if ct == "" {
		h.fail(w, r, fmt.Errorf("%w: %q (have %v)", haulage.ErrUnsupportedFormat, format, export.Formats))
		return
	}

	st, err := export.LoadStatement(r.Context(), h.ledger, cid)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	var buf bytes.Buffer
	if err := st.Write(&buf, format); err != nil {
		h.fail(w, r, err)
		return
	}

	attach(w, ct, export.FileName(st.Client, format))
	_, _ = buf.WriteTo(w)
}

// attach sets the headers of a file download.
func attach(w http.ResponseWriter, contentType, filename string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q; filename*=UTF-8''%s", filename, url.PathEscape(filename)))
	w.WriteHeader(http.StatusOK)
}
