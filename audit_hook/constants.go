package audithook

// Action constants for audit events.
const (
	// Client actions
	ActionClientCreated = "client.created"
	ActionClientUpdated = "client.updated"

	// Bill actions
	ActionBillIssued  = "bill.issued"
	ActionBillUpdated = "bill.updated"
	ActionBillDeleted = "bill.deleted"

	// Payment actions
	ActionPaymentRecorded = "payment.recorded"
	ActionPaymentOverpaid = "payment.overpaid"

	// Settings actions
	ActionSettingsUpdated = "settings.updated"
)

// Resource constants for audit events.
const (
	ResourceClient   = "client"
	ResourceBill     = "bill"
	ResourcePayment  = "payment"
	ResourceSettings = "settings"
)

// Category constants for audit events.
const (
	CategoryBilling = "billing"
	CategoryPayment = "payment"
	CategoryConfig  = "config"
)

// Severity levels for audit events.
const (
	SeverityInfo     = "info"
	SeverityWarning  = "warning"
	SeverityError    = "error"
	SeverityCritical = "critical"
)

// Outcome values for audit events.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
	OutcomePartial = "partial"
)
