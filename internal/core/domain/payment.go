package domain

// Payer is the person paying. Document types are processor codes such as CC,
// CE, TI, NIT, PPN.
type Payer struct {
	Name         string `validate:"required,max=60"`
	Surname      string `validate:"required,max=60"`
	Email        string `validate:"required,email"`
	DocumentType string `validate:"required,alpha,min=2,max=4"`
	Document     string `validate:"required,alphanum,max=20"`
	Mobile       string `validate:"omitempty,numeric,min=7,max=15"`
}

type Amount struct {
	Currency string
	Total    int64
}

// Payment describes what is being paid for. Reference is the processor's
// dedup key and must be unique per attempt.
type Payment struct {
	Reference   string `validate:"required,max=32"`
	Description string `validate:"required,max=255"`
	// Currency falls back to the client's default currency when empty.
	Currency string `validate:"omitempty,alpha,len=3"`
}

// ThreeDS enables the 3-D Secure challenge flow. ReturnURL is required when
// Enabled and ignored otherwise.
type ThreeDS struct {
	Enabled   bool
	ReturnURL string
}

type PurchaseOptions struct {
	Payer   Payer
	Payment Payment
	ThreeDS ThreeDS
}

// RefundOptions locates the purchase being reversed. InternalReference is the
// NetworkTransactionID of the purchase Response.
type RefundOptions struct {
	InternalReference int64
	Currency          string `validate:"omitempty,alpha,len=3"`
}
