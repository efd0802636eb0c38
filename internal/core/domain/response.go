package domain

import "time"

// DecisionStatus is the processor's verdict on a transaction.
type DecisionStatus string

const (
	StatusApproved DecisionStatus = "APPROVED"
	StatusRejected DecisionStatus = "REJECTED"
	StatusPending  DecisionStatus = "PENDING"
	StatusFailed   DecisionStatus = "FAILED"
)

// Processor messages observed in the sandbox (es locale).
const (
	MessageApproved                 = "Aprobada"
	MessageRejected                 = "Rechazada"
	MessageInvalidInternalReference = "La referencia interna provista es inválida"
	MessageAlreadyReversed          = "La transacción ya ha sido reversada"
)

// Response is the normalized answer to every processor call.
//
// Success only says the processor was reached and answered in a form we
// understand. Declines, unknown references and repeated reversals all come
// back with Success set; inspect Status or Message for the business outcome.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	// Authorization references this transaction in later operations.
	Authorization string `json:"authorization,omitempty"`
	// NetworkTransactionID is the processor's internal reference, used as
	// RefundOptions.InternalReference.
	NetworkTransactionID int64 `json:"network_transaction_id,omitempty"`

	Status     DecisionStatus `json:"status"`
	Reason     string         `json:"reason,omitempty"`
	Reference  string         `json:"reference,omitempty"`
	Franchise  string         `json:"franchise,omitempty"`
	Receipt    string         `json:"receipt,omitempty"`
	LastDigits string         `json:"last_digits,omitempty"`
	Refunded   bool           `json:"refunded"`
	Date       time.Time      `json:"date"`
}

func (r *Response) Approved() bool {
	return r.Status == StatusApproved
}

func (r *Response) Rejected() bool {
	return r.Status == StatusRejected
}
