// Package validation converts untrusted registration input into either a
// sanitized value set or a list of human-readable field errors. It never
// returns a Go error for bad input; failure is reported structurally so the
// caller can show every problem at once.
package validation

import (
	"fmt"
	"strings"
)

// FieldError is a single human-readable violation for one field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Result is the outcome of a registration validation pass.
type Result struct {
	IsValid   bool
	Errors    []FieldError
	Sanitized map[string]string
}

// Validator checks registration input against the field rule table.
// It holds no mutable state and is safe for concurrent use.
type Validator struct{}

// New returns a Validator.
func New() *Validator {
	return &Validator{}
}

// ValidateRegistration checks every rule-table field in table order,
// accumulating all violations instead of stopping at the first one.
// Optional fields that are absent default to the empty string. The two
// consent flags are checked outside the table; missing either is an error.
//
// Sanitized values (post-denylist-filter, trimmed) are returned for all
// fields that passed, keyed by field name.
func (v *Validator) ValidateRegistration(fields map[string]string, termsAccepted, privacyAccepted bool) Result {
	res := Result{Sanitized: make(map[string]string)}

	for _, rule := range registrationRules {
		value := strings.TrimSpace(fields[rule.Name])

		if value == "" {
			if rule.Required {
				res.Errors = append(res.Errors, FieldError{rule.Name, "is required"})
			} else {
				res.Sanitized[rule.Name] = ""
			}
			continue
		}

		if rule.Sanitize {
			value = SanitizeInput(value)
		}

		if len(value) < rule.MinLength {
			res.Errors = append(res.Errors, FieldError{rule.Name, fmt.Sprintf("must be at least %d characters", rule.MinLength)})
			continue
		}
		if rule.MaxLength > 0 && len(value) > rule.MaxLength {
			res.Errors = append(res.Errors, FieldError{rule.Name, fmt.Sprintf("must be at most %d characters", rule.MaxLength)})
			continue
		}

		// IBANs are normalized before the pattern check so users may type
		// spaces and lowercase letters.
		if rule.Name == "iban" {
			value = normalizeIBAN(value)
		}

		if rule.Pattern != nil && !rule.Pattern.MatchString(value) {
			res.Errors = append(res.Errors, FieldError{rule.Name, "has an invalid format"})
			continue
		}

		switch rule.Name {
		case "email":
			if !v.acceptableEmailDomain(value) {
				res.Errors = append(res.Errors, FieldError{rule.Name, "domain is not accepted"})
				continue
			}
		case "iban":
			if !ValidateIBAN(value) {
				res.Errors = append(res.Errors, FieldError{rule.Name, "checksum is invalid"})
				continue
			}
		case "password":
			if CheckPasswordStrength(value).Score < 3 {
				res.Errors = append(res.Errors, FieldError{rule.Name, "is too weak: use upper and lower case letters, digits and special characters"})
				continue
			}
		}

		res.Sanitized[rule.Name] = value
	}

	if !termsAccepted {
		res.Errors = append(res.Errors, FieldError{"termsAccepted", "terms and conditions must be accepted"})
	}
	if !privacyAccepted {
		res.Errors = append(res.Errors, FieldError{"privacyAccepted", "privacy policy must be accepted"})
	}

	res.IsValid = len(res.Errors) == 0
	return res
}

// acceptableEmailDomain accepts addresses at well-known providers outright
// and otherwise requires the domain part to look like a plausible hostname.
func (v *Validator) acceptableEmailDomain(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(email[at+1:])
	if _, ok := allowedEmailDomains[domain]; ok {
		return true
	}
	return genericDomainPattern.MatchString(domain)
}
