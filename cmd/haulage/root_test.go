package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/xraph/haulage/backup"
	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/client"
	"github.com/xraph/haulage/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	zerolog.SetGlobalLevel(zerolog.WarnLevel)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.InfoLevel) })
	return &config.Config{
		Store:       config.StoreFile,
		DataDir:     t.TempDir(),
		HookTimeout: time.Second,
	}
}

func run(t *testing.T, cfg *config.Config, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd(cfg)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("haulage %s: %v\n%s", strings.Join(args, " "), err, out.String())
	}
	return out.String()
}

func runErr(cfg *config.Config, args ...string) (string, error) {
	var out bytes.Buffer
	cmd := newRootCmd(cfg)
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func decodeOut[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	if err := json.Unmarshal([]byte(out), &v); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	return v
}

func TestCommandsPersistToDataFile(t *testing.T) {
	cfg := testConfig(t)

	out := run(t, cfg, "bill", "issue",
		"--new-name", "Shree Ram Traders", "--new-address", "Vapi",
		"--date", "2024-03-01",
		"--item", "qty=2;rate=1500;advance=500;vehicle=GJ05AB1234",
		"--item", "rate=250",
	)
	if !strings.Contains(out, "bill 1001 issued") {
		t.Fatalf("issue output: %s", out)
	}
	if _, err := os.Stat(filepath.Join(cfg.DataDir, backup.FileName)); err != nil {
		t.Fatalf("data file not written: %v", err)
	}

	// A fresh process sees the same ledger.
	clients := decodeOut[[]*client.Client](t, run(t, cfg, "client", "list", "--json"))
	if len(clients) != 1 || clients[0].TotalBills != 1 {
		t.Fatalf("clients = %+v", clients)
	}
	cid := clients[0].ID.String()

	out = run(t, cfg, "pay", "--client", cid, "--amount", "3000", "--date", "2024-03-10")
	if !strings.Contains(out, "1001") || !strings.Contains(out, "could not be applied") {
		t.Errorf("pay output: %s", out)
	}

	bills := decodeOut[[]*bill.Bill](t, run(t, cfg, "bill", "list", "--json", "--client", cid))
	if len(bills) != 1 || bills[0].Status != bill.StatusPaid {
		t.Fatalf("bills = %+v", bills)
	}

	run(t, cfg, "counter", "set", "1999")
	out = run(t, cfg, "bill", "issue", "--client", cid, "--date", "2024-03-12", "--item", "rate=100")
	if !strings.Contains(out, "bill 2000 issued") {
		t.Errorf("issue after counter set: %s", out)
	}

	run(t, cfg, "bill", "delete", "2000")
	if out := run(t, cfg, "bill", "list"); strings.Contains(out, "2000") {
		t.Errorf("deleted bill still listed:\n%s", out)
	}
}

func TestExportAndRender(t *testing.T) {
	cfg := testConfig(t)
	run(t, cfg, "bill", "issue", "--new-name", "Patel Roadlines", "--new-address", "Ankleshwar",
		"--date", "2024-01-05", "--item", "rate=1000")
	clients := decodeOut[[]*client.Client](t, run(t, cfg, "client", "list", "--json"))

	dir := t.TempDir()
	csvPath := filepath.Join(dir, "statement.csv")
	run(t, cfg, "export", clients[0].ID.String(), "--out", csvPath)
	data, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(string(data), "Client Name,") || !strings.Contains(string(data), "1001") {
		t.Errorf("csv:\n%s", data)
	}

	xlsxPath := filepath.Join(dir, "bill.xlsx")
	run(t, cfg, "bill", "render", "1001", "--out", xlsxPath)
	if fi, err := os.Stat(xlsxPath); err != nil || fi.Size() == 0 {
		t.Errorf("rendered bill missing: %v", err)
	}
}

func TestListSearch(t *testing.T) {
	cfg := testConfig(t)
	run(t, cfg, "bill", "issue", "--new-name", "Patel Roadlines", "--new-address", "Ankleshwar", "--new-phone", "9825011111",
		"--date", "2024-01-05", "--item", "rate=1000")
	run(t, cfg, "bill", "issue", "--new-name", "Maruti Roadways", "--new-address", "Vapi",
		"--date", "2024-01-06", "--item", "rate=500")

	clients := decodeOut[[]*client.Client](t, run(t, cfg, "client", "list", "--json", "--search", "98250"))
	if len(clients) != 1 || clients[0].Name != "Patel Roadlines" {
		t.Errorf("clients by phone = %+v", clients)
	}
	bills := decodeOut[[]*bill.Bill](t, run(t, cfg, "bill", "list", "--json", "--search", "maruti"))
	if len(bills) != 1 || bills[0].Number != 1002 {
		t.Errorf("bills by client name = %+v", bills)
	}
}

func TestBackupRestoreFromDirectory(t *testing.T) {
	cfg := testConfig(t)

	cfg.BackupDir = t.TempDir()

	run(t, cfg, "bill", "issue", "--new-name", "A", "--new-address", "B", "--date", "2024-01-05", "--item", "rate=10")
	if out := run(t, cfg, "backup", "push"); !strings.Contains(out, "pushed to file:"+cfg.BackupDir) {
		t.Errorf("push output: %s", out)
	}

	saved := t.TempDir()
	data, err := os.ReadFile(filepath.Join(cfg.DataDir, backup.FileName))
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(saved, backup.FileName), data, 0o644); err != nil {
		t.Fatal(err)
	}

	run(t, cfg, "bill", "issue", "--new-name", "C", "--new-address", "D", "--date", "2024-01-06", "--item", "rate=20")

	out := run(t, cfg, "backup", "restore", "--from", saved)
	if !strings.Contains(out, "restored 1 clients, 1 bills") {
		t.Errorf("restore output: %s", out)
	}
	clients := decodeOut[[]*client.Client](t, run(t, cfg, "client", "list", "--json"))
	if len(clients) != 1 || clients[0].Name != "A" {
		t.Errorf("clients after restore = %+v", clients)
	}
	out = run(t, cfg, "bill", "issue", "--client", clients[0].ID.String(), "--date", "2024-01-07", "--item", "rate=5")
	if !strings.Contains(out, "bill 1002 issued") {
		t.Errorf("counter not restored: %s", out)
	}
}

func TestDataFileWriteFailureFailsCommand(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("root ignores directory permissions")
	}
	cfg := testConfig(t)
	run(t, cfg, "client", "add", "--name", "A", "--address", "B")

	if err := os.Chmod(cfg.DataDir, 0o555); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chmod(cfg.DataDir, 0o755) })

	out, err := runErr(cfg, "bill", "issue", "--new-name", "C", "--new-address", "D", "--date", "2024-01-05", "--item", "rate=10")
	if err == nil {
		t.Fatalf("issue succeeded on a read-only data dir: %s", out)
	}
	if strings.Contains(out, "issued") {
		t.Errorf("issue reported success: %s", out)
	}

	// Nothing from the failed command reached the file.
	if err := os.Chmod(cfg.DataDir, 0o755); err != nil {
		t.Fatal(err)
	}
	out = run(t, cfg, "bill", "issue", "--new-name", "C", "--new-address", "D", "--date", "2024-01-05", "--item", "rate=10")
	if !strings.Contains(out, "bill 1001 issued") {
		t.Errorf("bill number after failed issue: %s", out)
	}
}

func TestUnreadableDataFileFailsCommand(t *testing.T) {
	cfg := testConfig(t)
	if err := os.Mkdir(filepath.Join(cfg.DataDir, backup.FileName), 0o755); err != nil {
		t.Fatal(err)
	}
	if _, err := runErr(cfg, "client", "list"); err == nil {
		t.Fatal("expected the command to fail")
	}
}
