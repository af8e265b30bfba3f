package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/xraph/haulage"
	"github.com/xraph/haulage/api"
	"github.com/xraph/haulage/export"
	"github.com/xraph/haulage/store/memory"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
}

type money struct {
	Amount int64 `json:"amount"`
}

func newServer(t *testing.T, opts ...api.Option) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	l := haulage.New(memory.New(),
		haulage.WithLogger(logger),
		haulage.WithPlugin(export.NewXLSXFormatter(logger)),
		haulage.WithClock(func() time.Time { return time.Date(2024, 2, 20, 10, 0, 0, 0, time.UTC) }),
	)
	if err := l.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = l.Stop() })

	srv := httptest.NewServer(api.New(l, append([]api.Option{api.WithLogger(logger)}, opts...)...))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string, out any) int {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, srv.URL+api.DefaultBasePath+path, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("%s %s: decode envelope: %v", method, path, err)
	}
	if out != nil && resp.StatusCode < 300 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("%s %s: decode data: %v", method, path, err)
		}
	}
	if resp.StatusCode >= 300 && env.Error == "" {
		t.Errorf("%s %s: status %d with empty error", method, path, resp.StatusCode)
	}
	return resp.StatusCode
}

func TestIssuePayDashboard(t *testing.T) {
	srv := newServer(t)

	var c struct {
		ID string `json:"id"`
	}
	if code := do(t, srv, http.MethodPost, "/clients", `{"name":"Maruti Roadways","address":"Vapi"}`, &c); code != http.StatusCreated {
		t.Fatalf("create client: status %d", code)
	}

	var issued struct {
		Bill struct {
			ID          string `json:"id"`
			Number      int64  `json:"number"`
			TotalActual money  `json:"total_actual"`
		} `json:"bill"`
	}
	body := `{"client_id":"` + c.ID + `","date":"2024-02-10","items":[
		{"vehicle_no":"GJ15AB1","lr_no":"11","particulars":"Vapi-Surat","qty":2,"rate":"100","advance":"20"},
		{"qty":1,"rate":"50.50"}
	]}`
	if code := do(t, srv, http.MethodPost, "/bills", body, &issued); code != http.StatusCreated {
		t.Fatalf("issue bill: status %d", code)
	}
	if issued.Bill.Number != 1001 {
		t.Errorf("bill number = %d, want 1001", issued.Bill.Number)
	}
	if issued.Bill.TotalActual.Amount != 23050 {
		t.Errorf("total actual = %d paise, want 23050", issued.Bill.TotalActual.Amount)
	}

	var paid struct {
		Remaining money `json:"remaining"`
		Client    struct {
			PendingAmount money `json:"pending_amount"`
		} `json:"client"`
	}
	if code := do(t, srv, http.MethodPost, "/payments",
		`{"client_id":"`+c.ID+`","amount":"100","date":"2024-02-18"}`, &paid); code != http.StatusCreated {
		t.Fatalf("record payment: status %d", code)
	}
	if paid.Client.PendingAmount.Amount != 13050 {
		t.Errorf("client pending = %d paise, want 13050", paid.Client.PendingAmount.Amount)
	}

	var dash struct {
		TotalClients     int   `json:"total_clients"`
		TotalBills       int   `json:"total_bills"`
		TotalRevenue     money `json:"total_revenue"`
		PendingAmount    money `json:"pending_amount"`
		ThisMonthRevenue money `json:"this_month_revenue"`
	}
	if code := do(t, srv, http.MethodGet, "/dashboard", "", &dash); code != http.StatusOK {
		t.Fatalf("dashboard: status %d", code)
	}
	if dash.TotalClients != 1 || dash.TotalBills != 1 {
		t.Errorf("counts = %d clients, %d bills", dash.TotalClients, dash.TotalBills)
	}
	if dash.TotalRevenue.Amount != 10000 || dash.PendingAmount.Amount != 13050 || dash.ThisMonthRevenue.Amount != 10000 {
		t.Errorf("dashboard = %+v", dash)
	}

	var bills []struct {
		Status string `json:"status"`
	}
	if code := do(t, srv, http.MethodGet, "/bills?status=partial&client_id="+c.ID, "", &bills); code != http.StatusOK {
		t.Fatalf("list bills: status %d", code)
	}
	if len(bills) != 1 || bills[0].Status != "partial" {
		t.Errorf("partial bills = %+v", bills)
	}

	var pays []struct {
		BillID string `json:"bill_id"`
	}
	if code := do(t, srv, http.MethodGet, "/payments?bill_id="+issued.Bill.ID, "", &pays); code != http.StatusOK {
		t.Fatalf("list payments: status %d", code)
	}
	if len(pays) != 1 {
		t.Errorf("payments = %d, want 1", len(pays))
	}
}

func TestListSearch(t *testing.T) {
	srv := newServer(t)

	for _, body := range []string{
		`{"name":"Maruti Roadways","address":"Vapi","phone":"9825011111"}`,
		`{"name":"Shree Ganesh Carriers","address":"Surat","phone":"9898022222"}`,
	} {
		if code := do(t, srv, http.MethodPost, "/clients", body, nil); code != http.StatusCreated {
			t.Fatalf("create client: status %d", code)
		}
	}
	if code := do(t, srv, http.MethodPost, "/bills",
		`{"new_client":{"name":"Patel Transport","address":"Ankleshwar"},"date":"2024-02-10","items":[{"qty":1,"rate":"100"}]}`, nil); code != http.StatusCreated {
		t.Fatalf("issue bill: status %d", code)
	}

	tests := []struct {
		path string
		want int
	}{
		{"/clients?q=maruti", 1},
		{"/clients?q=ROAD", 1},
		{"/clients?q=98980", 1},
		{"/clients?q=%20", 3},
		{"/clients?q=nobody", 0},
		{"/bills?q=1001", 1},
		{"/bills?q=patel", 1},
		{"/bills?q=maruti", 0},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var got []json.RawMessage
			if code := do(t, srv, http.MethodGet, tt.path, "", &got); code != http.StatusOK {
				t.Fatalf("status %d", code)
			}
			if len(got) != tt.want {
				t.Errorf("got %d results, want %d", len(got), tt.want)
			}
		})
	}
}

func TestErrorStatuses(t *testing.T) {
	srv := newServer(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		want   int
	}{
		{"unknown bill", http.MethodGet, "/bills/bill_01h455vb4pex5vsknk084sn02q", "", http.StatusNotFound},
		{"malformed id", http.MethodGet, "/clients/nope", "", http.StatusBadRequest},
		{"client without name", http.MethodPost, "/clients", `{"address":"Vapi"}`, http.StatusBadRequest},
		{"unknown field", http.MethodPost, "/clients", `{"name":"A","address":"B","gstin":"x"}`, http.StatusBadRequest},
		{"bill without items", http.MethodPost, "/bills", `{"new_client":{"name":"A","address":"B"},"date":"2024-02-01","items":[]}`, http.StatusBadRequest},
		{"bad date", http.MethodPost, "/bills", `{"new_client":{"name":"A","address":"B"},"date":"01/02/2024","items":[{"qty":1,"rate":"1"}]}`, http.StatusBadRequest},
		{"zero payment", http.MethodPost, "/payments", `{"client_id":"cli_01h455vb4pex5vsknk084sn02q","amount":"0","date":"2024-02-01"}`, http.StatusBadRequest},
		{"payment in dollars", http.MethodPost, "/payments", `{"client_id":"cli_01h455vb4pex5vsknk084sn02q","amount":{"amount":5000,"currency":"usd"},"date":"2024-02-01"}`, http.StatusBadRequest},
		{"line overflows", http.MethodPost, "/bills", `{"new_client":{"name":"A","address":"B"},"date":"2024-02-01","items":[{"qty":4611686018427387904,"rate":{"amount":3}}]}`, http.StatusBadRequest},
		{"bad status filter", http.MethodGet, "/bills?status=void", "", http.StatusBadRequest},
		{"counter without value", http.MethodPut, "/counter", `{}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := do(t, srv, tt.method, tt.path, tt.body, nil); got != tt.want {
				t.Errorf("status = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCounterAndSettings(t *testing.T) {
	srv := newServer(t)

	if code := do(t, srv, http.MethodPut, "/counter", `{"value":2000}`, nil); code != http.StatusOK {
		t.Fatalf("set counter: status %d", code)
	}
	var issued struct {
		Bill struct {
			Number int64 `json:"number"`
		} `json:"bill"`
	}
	body := `{"new_client":{"name":"A","address":"B"},"date":"2024-02-01","items":[{"qty":1,"rate":"10"}]}`
	if code := do(t, srv, http.MethodPost, "/bills", body, &issued); code != http.StatusCreated {
		t.Fatalf("issue bill: status %d", code)
	}
	if issued.Bill.Number != 2001 {
		t.Errorf("bill number = %d, want 2001", issued.Bill.Number)
	}

	var s struct {
		Name string `json:"name"`
	}
	if code := do(t, srv, http.MethodGet, "/settings", "", &s); code != http.StatusOK || s.Name != "Khodiyar Enterprise" {
		t.Errorf("default settings: status %d, name %q", code, s.Name)
	}
	if code := do(t, srv, http.MethodPut, "/settings", `{"name":"Jay Ambe Transport","address":"Surat","phone":"98"}`, &s); code != http.StatusOK {
		t.Fatalf("update settings: status %d", code)
	}
	if code := do(t, srv, http.MethodGet, "/settings", "", &s); code != http.StatusOK || s.Name != "Jay Ambe Transport" {
		t.Errorf("saved settings: status %d, name %q", code, s.Name)
	}
}

func TestDownloads(t *testing.T) {
	srv := newServer(t)

	var issued struct {
		Bill struct {
			ID string `json:"id"`
		} `json:"bill"`
		Client struct {
			ID string `json:"id"`
		} `json:"client"`
	}
	body := `{"new_client":{"name":"Patel Carriers","address":"Vapi"},"date":"2024-02-01","items":[{"qty":1,"rate":"10"}]}`
	if code := do(t, srv, http.MethodPost, "/bills", body, &issued); code != http.StatusCreated {
		t.Fatalf("issue bill: status %d", code)
	}

	get := func(path string) *http.Response {
		t.Helper()
		resp, err := srv.Client().Get(srv.URL + api.DefaultBasePath + path)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	resp := get("/clients/" + issued.Client.ID + "/export.csv")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("csv export: status %d", resp.StatusCode)
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "Patel Carriers_data.csv") {
		t.Errorf("disposition = %q", resp.Header.Get("Content-Disposition"))
	}
	data, _ := io.ReadAll(resp.Body)
	if !bytes.HasPrefix(data, []byte("Client Name,")) {
		t.Errorf("csv starts %q", data[:min(len(data), 20)])
	}

	resp = get("/clients/" + issued.Client.ID + "/export.xlsx")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != export.XLSXContentType {
		t.Errorf("xlsx export: status %d, type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}

	resp = get("/clients/" + issued.Client.ID + "/export.pdf")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("pdf export: status %d, want 400", resp.StatusCode)
	}

	resp = get("/bills/" + issued.Bill.ID + "/render")
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Content-Type") != export.XLSXContentType {
		t.Errorf("render: status %d, type %q", resp.StatusCode, resp.Header.Get("Content-Type"))
	}
	if !strings.Contains(resp.Header.Get("Content-Disposition"), "bill-1001.xlsx") {
		t.Errorf("render disposition = %q", resp.Header.Get("Content-Disposition"))
	}

	resp = get("/bills/" + issued.Bill.ID + "/render?format=pdf")
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("render pdf: status %d, want 400", resp.StatusCode)
	}
}

func TestBasicAuth(t *testing.T) {
	srv := newServer(t, api.WithBasicAuth("admin", "s3cret"))

	url := srv.URL + api.DefaultBasePath + "/clients"
	resp, err := srv.Client().Get(url)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("no credentials: status %d, want 401", resp.StatusCode)
	}

	req, _ := http.NewRequest(http.MethodGet, url, nil)
	req.SetBasicAuth("admin", "s3cret")
	resp, err = srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("with credentials: status %d, want 200", resp.StatusCode)
	}

	resp, err = srv.Client().Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz: status %d, want 200", resp.StatusCode)
	}
}

func TestSnapshotRestore(t *testing.T) {
	src := newServer(t)
	body := `{"new_client":{"name":"A","address":"B"},"date":"2024-02-01","items":[{"qty":1,"rate":"10"}]}`
	if code := do(t, src, http.MethodPost, "/bills", body, nil); code != http.StatusCreated {
		t.Fatalf("issue bill: status %d", code)
	}

	var snap json.RawMessage
	if code := do(t, src, http.MethodGet, "/snapshot", "", &snap); code != http.StatusOK {
		t.Fatalf("snapshot: status %d", code)
	}

	dst := newServer(t)
	if code := do(t, dst, http.MethodPost, "/snapshot", string(snap), nil); code != http.StatusOK {
		t.Fatalf("restore: status %d", code)
	}
	var issued struct {
		Bill struct {
			Number int64 `json:"number"`
		} `json:"bill"`
	}
	if code := do(t, dst, http.MethodPost, "/bills", body, &issued); code != http.StatusCreated {
		t.Fatalf("issue after restore: status %d", code)
	}
	if issued.Bill.Number != 1002 {
		t.Errorf("bill number after restore = %d, want 1002", issued.Bill.Number)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, "haulage_bill_issued_total 0\n")
	})
	srv := newServer(t, api.WithBasicAuth("admin", "s3cret"), api.WithMetrics(metrics))

	resp, err := srv.Client().Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK || !strings.Contains(string(body), "haulage_bill_issued_total") {
		t.Errorf("metrics: status %d body %q", resp.StatusCode, body)
	}
}
