// Package haulage is the billing ledger of a transport contractor: clients,
// numbered bills made of consignment lines, and received payments that are
// applied to the oldest open bills first.
//
// Haulage is a library first. The command in cmd/haulage wraps it in a CLI
// and a JSON API, and package extension mounts it in a Forge application.
//
// # Quick Start
//
//	import (
//	    "github.com/xraph/haulage"
//	    "github.com/xraph/haulage/store/memory"
//	)
//
//	l := haulage.New(memory.New())
//	if err := l.Start(ctx); err != nil {
//	    log.Fatal(err)
//	}
//	defer l.Stop()
//
//	res, err := l.IssueBill(ctx, bill.IssueInput{
//	    NewClient: &client.Input{Name: "Shree Ram Traders", Address: "Vapi"},
//	    Date:      time.Now(),
//	    Items: []bill.ItemInput{
//	        {Qty: 2, Rate: types.Rupees(1500), Advance: types.Rupees(500), VehicleNo: "GJ05AB1234"},
//	    },
//	})
//
// # Money
//
// Amounts are integer paise in types.Money. A bill line's amount is
// qty*rate and its actual due is amount minus advance. A bill's pending
// amount never goes below zero, but a client's can: an overpayment is
// credited in full and the client's pending amount turns negative.
//
// # Bill numbers
//
// Numbers come from a counter that starts at 1000, so the first bill is
// 1001. The counter belongs to the store unless WithSequence hands it to a
// shared one (package sequence has a Redis counter). SetBillNumber is the
// only reset.
//
// # Plugins
//
// Every hook in package plugin fires after the store writes of an operation
// have succeeded. OnLedgerMutated carries a snapshot of the whole ledger and
// is what the backup extension uses to replicate it. Bill documents are
// produced by BillFormatter plugins; package export provides XLSX.
package haulage
