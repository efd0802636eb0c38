package domain

import (
	"fmt"
	"strings"
)

// Franchise is the card network a card number belongs to.
type Franchise string

const (
	FranchiseVisa       Franchise = "visa"
	FranchiseMastercard Franchise = "master"
	FranchiseDiners     Franchise = "diners"
	FranchiseAmex       Franchise = "amex"
	FranchiseUnknown    Franchise = "unknown"
)

// Card is the payment instrument. It is only held in memory for the duration
// of a single call and is never journaled.
type Card struct {
	Number            string `validate:"required,numeric,min=12,max=19"`
	ExpiryMonth       int    `validate:"min=1,max=12"`
	ExpiryYear        int    `validate:"min=2000,max=2099"`
	VerificationValue string `validate:"required,numeric,min=3,max=4"`
	FirstName         string
	LastName          string
	// Installments defaults to 1.
	Installments int `validate:"min=0,max=48"`
}

// Expiration renders the expiry as MM/YY.
func (c Card) Expiration() string {
	return fmt.Sprintf("%02d/%02d", c.ExpiryMonth, c.ExpiryYear%100)
}

func (c Card) InstallmentCount() int {
	if c.Installments <= 0 {
		return 1
	}
	return c.Installments
}

func (c Card) LastDigits() string {
	if len(c.Number) < 4 {
		return c.Number
	}
	return c.Number[len(c.Number)-4:]
}

// Masked keeps the BIN and the last four digits.
func (c Card) Masked() string {
	return MaskPAN(c.Number)
}

func (c Card) HolderName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Franchise detects the network from the card's BIN.
func (c Card) Franchise() Franchise {
	n := c.Number
	switch {
	case hasPrefix(n, "34", "37"):
		return FranchiseAmex
	case hasPrefix(n, "36", "38", "300", "301", "302", "303", "304", "305"):
		return FranchiseDiners
	case hasPrefix(n, "4"):
		return FranchiseVisa
	case hasPrefix(n, "51", "52", "53", "54", "55"):
		return FranchiseMastercard
	case len(n) >= 4 && n[:4] >= "2221" && n[:4] <= "2720":
		return FranchiseMastercard
	}
	return FranchiseUnknown
}

// MaskPAN hides everything but the first six and last four digits.
func MaskPAN(pan string) string {
	if len(pan) <= 10 {
		return strings.Repeat("*", len(pan))
	}
	return pan[:6] + strings.Repeat("*", len(pan)-10) + pan[len(pan)-4:]
}

func hasPrefix(s string, prefixes ...string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
