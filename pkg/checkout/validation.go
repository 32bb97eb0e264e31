package checkout

import (
	"regexp"
	"strings"

	pkgerrors "github.com/grameenmart/storefront/pkg/errors"
)

var mobilePattern = regexp.MustCompile(`^[0-9]{10}$`)

// CustomerDetails is what a shopper types at checkout.
type CustomerDetails struct {
	Name     string `json:"name"`
	Mobile   string `json:"mobile"`
	Place    string `json:"place"`
	Landmark string `json:"landmark"`
}

// Normalize trims surrounding whitespace from every field.
func (d CustomerDetails) Normalize() CustomerDetails {
	return CustomerDetails{
		Name:     strings.TrimSpace(d.Name),
		Mobile:   strings.TrimSpace(d.Mobile),
		Place:    strings.TrimSpace(d.Place),
		Landmark: strings.TrimSpace(d.Landmark),
	}
}

// FieldViolation names a rejected field.
type FieldViolation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidateCustomerDetails requires name, mobile and place. Landmark is optional.
func ValidateCustomerDetails(details CustomerDetails) error {
	details = details.Normalize()

	var violations []FieldViolation
	if details.Name == "" {
		violations = append(violations, FieldViolation{Field: "name", Reason: "required"})
	}
	switch {
	case details.Mobile == "":
		violations = append(violations, FieldViolation{Field: "mobile", Reason: "required"})
	case !mobilePattern.MatchString(details.Mobile):
		violations = append(violations, FieldViolation{Field: "mobile", Reason: "must be 10 digits"})
	}
	if details.Place == "" {
		violations = append(violations, FieldViolation{Field: "place", Reason: "required"})
	}
	if len(violations) == 0 {
		return nil
	}
	return pkgerrors.New(pkgerrors.CodeValidation, "Please fill in all required customer details").WithDetails(map[string]any{
		"violations": violations,
	})
}

// ValidMobile reports whether mobile looks like a 10 digit phone number.
func ValidMobile(mobile string) bool {
	return mobilePattern.MatchString(strings.TrimSpace(mobile))
}
