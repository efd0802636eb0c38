// Package sandbox holds the PlacetoPay sandbox fixtures: the published test
// cards, whose outcome is fixed by the processor, and a payer the sandbox
// accepts.
package sandbox

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/DanielPopoola/placetopay-gateway/internal/core/domain"
)

type TestCard struct {
	CardNumber  string
	CVV         string
	ExpiryMonth int
	ExpiryYear  int
	Description string
}

var (
	DinersApproved = TestCard{
		CardNumber:  "36545400000008",
		CVV:         "123",
		ExpiryMonth: 12,
		ExpiryYear:  2030,
		Description: "Diners, approved",
	}

	DinersRejected = TestCard{
		CardNumber:  "36545400000248",
		CVV:         "123",
		ExpiryMonth: 12,
		ExpiryYear:  2030,
		Description: "Diners, rejected",
	}

	VisaApproved = TestCard{
		CardNumber:  "4110760000000081",
		CVV:         "123",
		ExpiryMonth: 12,
		ExpiryYear:  2030,
		Description: "Visa, approved",
	}

	VisaRejected = TestCard{
		CardNumber:  "4110760000000016",
		CVV:         "123",
		ExpiryMonth: 12,
		ExpiryYear:  2030,
		Description: "Visa, rejected",
	}

	VisaApproved3DS = TestCard{
		CardNumber:  "4110760000000008",
		CVV:         "123",
		ExpiryMonth: 12,
		ExpiryYear:  2030,
		Description: "Visa, approved after 3DS challenge",
	}
)

// Cards indexes the sandbox cards by the names the CLI accepts.
var Cards = map[string]TestCard{
	"diners-approved":   DinersApproved,
	"diners-rejected":   DinersRejected,
	"visa-approved":     VisaApproved,
	"visa-rejected":     VisaRejected,
	"visa-approved-3ds": VisaApproved3DS,
}

const (
	Amount      = 100
	ReturnURL   = "https://www.your-site.com/return?reference=1234567890"
	Description = "Cum vitae et consequatur quas adipisci ut rem."
)

// Card builds the instrument for tc, held by the default payer.
func (tc TestCard) Card() domain.Card {
	payer := Payer()
	return domain.Card{
		Number:            tc.CardNumber,
		ExpiryMonth:       tc.ExpiryMonth,
		ExpiryYear:        tc.ExpiryYear,
		VerificationValue: tc.CVV,
		FirstName:         payer.Name,
		LastName:          payer.Surname,
		Installments:      1,
	}
}

// Payer returns a fresh copy of the sandbox payer.
func Payer() domain.Payer {
	return domain.Payer{
		Name:         "Erika",
		Surname:      "Howe",
		Email:        "cwilliamson@hotmail.com",
		DocumentType: "CC",
		Document:     "3572264088",
		Mobile:       "3006108300",
	}
}

var referenceSeq atomic.Int64

// Reference returns a time based reference that stays unique within a process
// even when two purchases land in the same millisecond.
func Reference(prefix string) string {
	n := referenceSeq.Add(1)
	return domain.NewReference(fmt.Sprintf("%s%d", prefix, n), time.Now())
}

// PurchaseOptions builds options with a new reference. 3DS is enabled with
// the sandbox return URL when use3DS is set.
func PurchaseOptions(prefix string, use3DS bool) domain.PurchaseOptions {
	opts := domain.PurchaseOptions{
		Payer: Payer(),
		Payment: domain.Payment{
			Reference:   Reference(prefix),
			Description: Description,
		},
	}
	if use3DS {
		opts.ThreeDS = domain.ThreeDS{Enabled: true, ReturnURL: ReturnURL}
	}
	return opts
}
