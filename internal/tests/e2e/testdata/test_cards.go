package testdata

import (
	"github.com/DanielPopoola/placetopay-gateway/internal/adapters/placetopay/sandbox"
	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
)

// TestCard is a sandbox card whose outcome is fixed by the processor.
type TestCard = sandbox.TestCard

var (
	DinersApproved  = sandbox.DinersApproved
	DinersRejected  = sandbox.DinersRejected
	VisaApproved    = sandbox.VisaApproved
	VisaRejected    = sandbox.VisaRejected
	VisaApproved3DS = sandbox.VisaApproved3DS
)

const (
	Amount      = sandbox.Amount
	ReturnURL   = sandbox.ReturnURL
	Description = sandbox.Description
)

const referencePrefix = "TEST"

func Payer() domain.Payer {
	return sandbox.Payer()
}

func Reference() string {
	return sandbox.Reference(referencePrefix)
}

func PurchaseOptions(use3DS bool) domain.PurchaseOptions {
	return sandbox.PurchaseOptions(referencePrefix, use3DS)
}
