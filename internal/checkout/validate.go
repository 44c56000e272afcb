package checkout

import (
	"regexp"
	"strings"
)

// Field identifies one customer-information input.
type Field string

const (
	FieldName    Field = "name"
	FieldEmail   Field = "email"
	FieldPhone   Field = "phone"
	FieldAddress Field = "address"
)

var allFields = []Field{FieldName, FieldEmail, FieldPhone, FieldAddress}

// FieldErrors maps a field to its user-facing validation message.
type FieldErrors map[Field]string

// Shape check only: local part, "@", domain, ".", tld, no whitespace.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// CustomerInfo holds the checkout form fields. All are required.
type CustomerInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

// Trimmed returns the info with surrounding whitespace stripped from
// every field, the form the order payload carries.
func (c CustomerInfo) Trimmed() CustomerInfo {
	return CustomerInfo{
		Name:    strings.TrimSpace(c.Name),
		Email:   strings.TrimSpace(c.Email),
		Phone:   strings.TrimSpace(c.Phone),
		Address: strings.TrimSpace(c.Address),
	}
}

func (c CustomerInfo) field(f Field) string {
	switch f {
	case FieldName:
		return c.Name
	case FieldEmail:
		return c.Email
	case FieldPhone:
		return c.Phone
	case FieldAddress:
		return c.Address
	}
	return ""
}

// Validate runs every field rule and returns all failures at once, so a
// caller can show every outstanding error rather than just the first.
func Validate(info CustomerInfo, strictPhone bool) FieldErrors {
	errs := FieldErrors{}
	for _, f := range allFields {
		if msg := validateField(f, info.field(f), strictPhone); msg != "" {
			errs[f] = msg
		}
	}
	return errs
}

func validateField(f Field, value string, strictPhone bool) string {
	value = strings.TrimSpace(value)

	switch f {
	case FieldName:
		if value == "" {
			return "Name is required"
		}
	case FieldEmail:
		if value == "" {
			return "Email is required"
		}
		if !emailPattern.MatchString(value) {
			return "Please enter a valid email"
		}
	case FieldPhone:
		if value == "" {
			return "Phone number is required"
		}
		if strictPhone {
			if n := countDigits(value); n < 10 || n > 15 {
				return "Phone number must be 10-15 digits"
			}
		}
	case FieldAddress:
		if value == "" {
			return "Address is required"
		}
	}
	return ""
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if r >= '0' && r <= '9' {
			n++
		}
	}
	return n
}
