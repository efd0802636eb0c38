package domain

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator"
)

var validate = validator.New()

// ValidatePurchase checks a purchase locally. It returns nil or a *ValidationError.
func ValidatePurchase(amount int64, card Card, opts PurchaseOptions) error {
	verr := &ValidationError{}

	if amount <= 0 {
		verr.Add("amount", "must be greater than zero")
	}
	collect(verr, "Card", card)
	collect(verr, "", opts)

	if opts.ThreeDS.Enabled {
		if err := checkReturnURL(opts.ThreeDS.ReturnURL); err != nil {
			verr.Add("ThreeDS.ReturnURL", err.Error())
		}
	}

	if len(verr.Violations) == 0 {
		return nil
	}
	return verr
}

// ValidateRefund checks a refund locally. The internal reference is left to
// the processor, which answers unknown references with a decline message.
func ValidateRefund(amount int64, authorization string, opts RefundOptions) error {
	verr := &ValidationError{}

	if amount <= 0 {
		verr.Add("amount", "must be greater than zero")
	}
	if strings.TrimSpace(authorization) == "" {
		verr.Add("authorization", "is required")
	}
	collect(verr, "", opts)

	if len(verr.Violations) == 0 {
		return nil
	}
	return verr
}

func checkReturnURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("is required when 3DS is enabled")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("is not a valid URL")
	}
	if !u.IsAbs() || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("must be an absolute http(s) URL")
	}
	return nil
}

func collect(verr *ValidationError, prefix string, s interface{}) {
	err := validate.Struct(s)
	if err == nil {
		return
	}
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		verr.Add(prefix, err.Error())
		return
	}
	for _, fe := range fieldErrs {
		verr.Add(fieldName(prefix, fe.StructNamespace()), describe(fe))
	}
}

// fieldName drops the root struct name from a validator namespace.
func fieldName(prefix, namespace string) string {
	if i := strings.Index(namespace, "."); i >= 0 {
		namespace = namespace[i+1:]
	}
	if prefix == "" {
		return namespace
	}
	return prefix + "." + namespace
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email"
	case "numeric":
		return "must contain only digits"
	case "alpha":
		return "must contain only letters"
	case "alphanum":
		return "must contain only letters and digits"
	case "len":
		return "must have length " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	}
	return "failed " + fe.Tag() + " check"
}
