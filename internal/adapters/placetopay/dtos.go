package placetopay

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type PayerDTO struct {
	Name         string `json:"name"`
	Surname      string `json:"surname"`
	Email        string `json:"email"`
	DocumentType string `json:"documentType"`
	Document     string `json:"document"`
	Mobile       string `json:"mobile,omitempty"`
}

type AmountDTO struct {
	Currency string `json:"currency"`
	Total    int64  `json:"total"`
}

type PaymentDTO struct {
	Reference   string    `json:"reference"`
	Description string    `json:"description"`
	Amount      AmountDTO `json:"amount"`
}

type CardDTO struct {
	Number       string `json:"number"`
	Expiration   string `json:"expiration"`
	CVV          string `json:"cvv"`
	Installments int    `json:"installments"`
}

type InstrumentDTO struct {
	Card CardDTO `json:"card"`
}

// ProcessRequest is the body of POST /gateway/process.
type ProcessRequest struct {
	Auth       Auth          `json:"auth"`
	Locale     string        `json:"locale,omitempty"`
	Payer      PayerDTO      `json:"payer"`
	Payment    PaymentDTO    `json:"payment"`
	Instrument InstrumentDTO `json:"instrument"`
	Use3DS     bool          `json:"use3ds,omitempty"`
	ReturnURL  string        `json:"returnUrl,omitempty"`
}

const ActionReverse = "reverse"

// TransactionRequest is the body of POST /gateway/transaction.
type TransactionRequest struct {
	Auth              Auth       `json:"auth"`
	Locale            string     `json:"locale,omitempty"`
	InternalReference int64      `json:"internalReference"`
	Authorization     string     `json:"authorization,omitempty"`
	Action            string     `json:"action"`
	Amount            *AmountDTO `json:"amount,omitempty"`
}

// QueryRequest is the body of POST /gateway/query.
type QueryRequest struct {
	Auth              Auth  `json:"auth"`
	InternalReference int64 `json:"internalReference"`
}

type StatusDTO struct {
	Status  string `json:"status"`
	Reason  string `json:"reason"`
	Message string `json:"message"`
	Date    string `json:"date"`
}

// TransactionResponse is returned by every gateway endpoint. A body without a
// status block is not a processor answer.
type TransactionResponse struct {
	Status            *StatusDTO `json:"status"`
	Date              string     `json:"date,omitempty"`
	TransactionDate   string     `json:"transactionDate,omitempty"`
	InternalReference int64      `json:"internalReference,omitempty"`
	Reference         string     `json:"reference,omitempty"`
	PaymentMethod     string     `json:"paymentMethod,omitempty"`
	Franchise         string     `json:"franchise,omitempty"`
	FranchiseName     string     `json:"franchiseName,omitempty"`
	IssuerName        string     `json:"issuerName,omitempty"`
	Amount            *AmountDTO `json:"amount,omitempty"`
	Authorization     FlexString `json:"authorization,omitempty"`
	Receipt           FlexString `json:"receipt,omitempty"`
	Type              string     `json:"type,omitempty"`
	Refunded          bool       `json:"refunded"`
	LastDigits        string     `json:"lastDigits,omitempty"`
	Provider          string     `json:"provider,omitempty"`
}

// FlexString accepts a JSON string or number. The processor is not consistent
// about authorization and receipt codes.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}
