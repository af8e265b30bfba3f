// Package settings holds the company profile printed on every bill.
package settings

import "time"

// CompanySettings is a singleton. Only the renderer reads it.
type CompanySettings struct {
	Name       string    `json:"name" validate:"required"`
	Address    string    `json:"address" validate:"required"`
	Phone      string    `json:"phone" validate:"required"`
	Phone2     string    `json:"phone2,omitempty"`
	Email      string    `json:"email" validate:"omitempty,email"`
	PANNo      string    `json:"pan_no"`
	BankName   string    `json:"bank_name"`
	AccountNo  string    `json:"account_no"`
	IFSCCode   string    `json:"ifsc_code"`
	BankBranch string    `json:"bank_branch"`
	Proprietor string    `json:"proprietor"`
	Logo       string    `json:"logo,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Default returns the profile used until the operator saves their own.
func Default() *CompanySettings {
	return &CompanySettings{
		Name:       "Khodiyar Enterprise",
		Address:    "Transport Company Address",
		Phone:      "+91 98765 43210",
		Phone2:     "+91 98765 43211",
		Email:      "info@khodiyarenterprise.com",
		PANNo:      "ABCDE1234F",
		BankName:   "State Bank of India",
		AccountNo:  "1234567890",
		IFSCCode:   "SBIN0001234",
		BankBranch: "Main Branch",
		Proprietor: "Proprietor Name",
	}
}
