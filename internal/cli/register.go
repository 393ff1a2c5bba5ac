package cli

import (
	"bytes"
	"context"
	"fmt"

	"github.com/waxworks/vinylvault/internal/account"
	"github.com/waxworks/vinylvault/internal/common"
)

// registration prompts, in form order. The field names match the validation
// rule table.
var registrationPrompts = []struct {
	field  string
	prompt string
}{
	{"firstName", "First name"},
	{"lastName", "Last name"},
	{"username", "Username"},
	{"email", "Email address"},
	{"phone", "Phone (optional, Enter to skip)"},
	{"shippingAddress", "Shipping address"},
	{"iban", "IBAN"},
	{"bic", "BIC"},
	{"bankAccountOwner", "Bank account owner"},
}

// Register walks the user through the registration form and submits it to
// the account service. All field errors are shown at once.
func (a *App) Register(ctx context.Context) error {
	fields := make(map[string]string, len(registrationPrompts)+1)

	for _, p := range registrationPrompts {
		value, err := GetSimpleText(a.reader, p.prompt, a.out)
		if err != nil {
			return err
		}
		fields[p.field] = value
	}

	terms, err := GetConfirm(a.reader, "Do you accept the terms and conditions?", a.out)
	if err != nil {
		return err
	}
	privacy, err := GetConfirm(a.reader, "Do you accept the privacy policy?", a.out)
	if err != nil {
		return err
	}

	pw, err := GetPassword("Choose a password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	pw2, err := GetPassword("Repeat the password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw2)

	if !bytes.Equal(pw, pw2) {
		fmt.Fprintln(a.out, "Passwords do not match.")
		return nil
	}
	fields["password"] = string(pw)

	res := a.accounts.Register(ctx, account.RegistrationInput{
		Fields:          fields,
		TermsAccepted:   terms,
		PrivacyAccepted: privacy,
	})

	switch {
	case res.RateLimited:
		fmt.Fprintf(a.out, "%s (try again after %s)\n", res.Message, res.RetryAfter.Format("15:04:05"))
	case len(res.FieldErrors) > 0:
		fmt.Fprintln(a.out, res.Message)
		for _, fe := range res.FieldErrors {
			fmt.Fprintf(a.out, "  - %s\n", fe)
		}
	case !res.Success:
		fmt.Fprintln(a.out, res.Message)
	default:
		fmt.Fprintln(a.out, "Account created.")
		if res.EmailSent {
			fmt.Fprintln(a.out, "A verification email is on its way; redeem it with 'verify'.")
		} else {
			fmt.Fprintln(a.out, "The verification email could not be sent; try 'verify' later or contact support.")
		}
	}
	return nil
}
