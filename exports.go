package haulage

import "github.com/xraph/haulage/types"

// Money is re-exported from types package.
type Money = types.Money

// Entity is re-exported from types package.
type Entity = types.Entity

// Re-export Money constructors
var (
	INR       = types.INR
	Rupees    = types.Rupees
	ParseINR  = types.ParseINR
	Zero      = types.Zero
	Sum       = types.Sum
	NewEntity = types.NewEntity
)
