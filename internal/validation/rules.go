package validation

import "regexp"

// FieldRule describes how a single registration field is checked.
type FieldRule struct {
	Name      string
	Required  bool
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
	Sanitize  bool
}

var (
	namePattern    = regexp.MustCompile(`^[a-zA-ZÀ-ÿ' -]+$`)
	usernameRegexp = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)
	emailPattern   = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	phonePattern   = regexp.MustCompile(`^\+?[0-9 ()/-]+$`)
	ibanPattern    = regexp.MustCompile(`^[A-Z]{2}[0-9]{2}[A-Z0-9]{11,30}$`)
	bicPattern     = regexp.MustCompile(`^[A-Z]{6}[A-Z0-9]{2}([A-Z0-9]{3})?$`)
)

// registrationRules is the field rule table. Order matters: validation walks
// the table top to bottom and error messages come out in this order.
var registrationRules = []FieldRule{
	{Name: "firstName", Required: true, MinLength: 2, MaxLength: 50, Pattern: namePattern, Sanitize: true},
	{Name: "lastName", Required: true, MinLength: 2, MaxLength: 50, Pattern: namePattern, Sanitize: true},
	{Name: "username", Required: true, MinLength: 3, MaxLength: 30, Pattern: usernameRegexp, Sanitize: true},
	{Name: "email", Required: true, MinLength: 5, MaxLength: 100, Pattern: emailPattern},
	{Name: "phone", Required: false, MinLength: 6, MaxLength: 20, Pattern: phonePattern, Sanitize: true},
	{Name: "shippingAddress", Required: true, MinLength: 5, MaxLength: 200, Sanitize: true},
	{Name: "iban", Required: true, MinLength: 15, MaxLength: 34, Pattern: ibanPattern},
	{Name: "bic", Required: true, MinLength: 8, MaxLength: 11, Pattern: bicPattern},
	{Name: "bankAccountOwner", Required: true, MinLength: 2, MaxLength: 100, Pattern: namePattern, Sanitize: true},
	{Name: "password", Required: true, MinLength: 8, MaxLength: 128},
}

// allowedEmailDomains are the common providers accepted without further
// syntax checks. Anything else must still look like a plausible domain.
var allowedEmailDomains = map[string]struct{}{
	"gmail.com":      {},
	"googlemail.com": {},
	"yahoo.com":      {},
	"yahoo.de":       {},
	"hotmail.com":    {},
	"hotmail.de":     {},
	"outlook.com":    {},
	"outlook.de":     {},
	"icloud.com":     {},
	"aol.com":        {},
	"protonmail.com": {},
	"proton.me":      {},
	"web.de":         {},
	"gmx.de":         {},
	"gmx.net":        {},
	"t-online.de":    {},
	"posteo.de":      {},
}

var genericDomainPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9.-]*\.[a-z]{2,}$`)
