package main

import (
	"strings"
	"testing"
	"time"

	"github.com/xraph/haulage/types"
)

func TestParseItem(t *testing.T) {
	billDate := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	it, err := parseItem("qty=2; rate=1500.50 ;advance=500;vehicle=GJ05AB1234;lr=88;particulars=Surat to Vapi", billDate)
	if err != nil {
		t.Fatal(err)
	}
	if it.Qty != 2 || !it.Rate.Equal(types.INR(150050)) || !it.Advance.Equal(types.Rupees(500)) {
		t.Errorf("numbers = %+v", it)
	}
	if it.VehicleNo != "GJ05AB1234" || it.LRNo != "88" || it.Particulars != "Surat to Vapi" {
		t.Errorf("text fields = %+v", it)
	}
	if !it.Date.Equal(billDate) {
		t.Errorf("date = %v, want bill date", it.Date)
	}

	it, err = parseItem("rate=100;date=2024-02-27", billDate)
	if err != nil {
		t.Fatal(err)
	}
	if it.Qty != 1 || it.Date.Day() != 27 {
		t.Errorf("defaults = %+v", it)
	}
}

func TestParseItemRejects(t *testing.T) {
	for _, in := range []string{"qty", "qty=two", "rate=abc", "colour=red", "date=01/03/2024"} {
		if _, err := parseItem(in, time.Time{}); err == nil {
			t.Errorf("parseItem(%q) succeeded", in)
		} else if !strings.Contains(err.Error(), in) {
			t.Errorf("error %q does not quote the flag", err)
		}
	}
}
