package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xraph/haulage/bill"
	"github.com/xraph/haulage/types"
)

// parseItem reads one --item flag of the form
//
//	qty=2;rate=1500;advance=500;vehicle=GJ05AB1234;lr=88;particulars=Surat to Vapi;date=2024-03-01
//
// Omitted qty defaults to 1 and omitted date to billDate.
func parseItem(s string, billDate time.Time) (bill.ItemInput, error) {
	it := bill.ItemInput{
		Date:    billDate,
		Qty:     1,
		Rate:    types.Zero(types.DefaultCurrency),
		Advance: types.Zero(types.DefaultCurrency),
	}
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, val, ok := strings.Cut(part, "=")
		if !ok {
			return it, fmt.Errorf("item %q: %q is not key=value", s, part)
		}
		key, val = strings.ToLower(strings.TrimSpace(key)), strings.TrimSpace(val)

		var err error
		switch key {
		case "qty":
			it.Qty, err = strconv.ParseInt(val, 10, 64)
		case "rate":
			it.Rate, err = types.ParseINR(val)
		case "advance":
			it.Advance, err = types.ParseINR(val)
		case "vehicle", "vehicle_no":
			it.VehicleNo = val
		case "lr", "lr_no":
			it.LRNo = val
		case "particulars":
			it.Particulars = val
		case "date":
			it.Date, err = types.ParseDate(val)
		default:
			err = fmt.Errorf("unknown key")
		}
		if err != nil {
			return it, fmt.Errorf("item %q: %s: %w", s, key, err)
		}
	}
	return it, nil
}

func parseItems(flags []string, billDate time.Time) ([]bill.ItemInput, error) {
	items := make([]bill.ItemInput, 0, len(flags))
	for _, f := range flags {
		it, err := parseItem(f, billDate)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}

// parseDay reads YYYY-MM-DD; an empty string means today.
func parseDay(s string) (time.Time, error) {
	if s == "" {
		y, m, d := time.Now().Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	return types.ParseDate(s)
}
