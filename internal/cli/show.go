package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/waxworks/vinylvault/internal/common"
)

// Show decrypts and prints the stored account record.
func (a *App) Show(ctx context.Context) error {
	pw, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	res := a.keeper.RetrieveUserData(ctx, pw)
	if !res.Success {
		fmt.Fprintln(a.out, res.Message)
		return res.Err
	}

	s := res.Record.Sensitive
	ns := res.Record.NonSensitive
	fmt.Fprintf(a.out, "Name:             %s %s\n", s.FirstName, s.LastName)
	fmt.Fprintf(a.out, "Email:            %s (verified: %t)\n", s.Email, ns.EmailVerified)
	if s.Phone != "" {
		fmt.Fprintf(a.out, "Phone:            %s\n", s.Phone)
	}
	fmt.Fprintf(a.out, "Shipping address: %s\n", s.ShippingAddress)
	fmt.Fprintf(a.out, "IBAN:             %s\n", s.IBAN)
	fmt.Fprintf(a.out, "BIC:              %s\n", s.BIC)
	fmt.Fprintf(a.out, "Account owner:    %s\n", s.BankAccountOwner)
	fmt.Fprintf(a.out, "Status:           %s (registered %s)\n", ns.AccountStatus, ns.RegistrationDate.Format("2006-01-02"))
	return nil
}

// Status prints what can be known without the password: whether an account
// exists, its state, and the session freshness.
func (a *App) Status(ctx context.Context) error {
	res := a.keeper.GetUserDataMetadata(ctx)
	switch {
	case res.NotFound:
		fmt.Fprintln(a.out, "No account stored on this device.")
	case !res.Success:
		fmt.Fprintln(a.out, res.Message)
		return res.Err
	default:
		m := res.Metadata
		fmt.Fprintf(a.out, "Account status:   %s\n", m.NonSensitive.AccountStatus)
		fmt.Fprintf(a.out, "Email verified:   %t\n", m.NonSensitive.EmailVerified)
		fmt.Fprintf(a.out, "Stored at:        %s (schema %s)\n", m.StoredAt.Format("2006-01-02 15:04"), m.Version)
		fmt.Fprintf(a.out, "Encryption:       %s, %s with %d iterations\n",
			m.SecurityMetadata.Algorithm, m.SecurityMetadata.KDF, m.SecurityMetadata.Iterations)
	}

	if a.keeper.IsSessionValid(ctx) {
		fmt.Fprintln(a.out, "Session:          active")
	} else {
		fmt.Fprintln(a.out, "Session:          none")
	}
	return nil
}

// Export prints the decrypted record as a portable JSON bundle.
func (a *App) Export(ctx context.Context) error {
	pw, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	res := a.accounts.RequestExport(ctx, pw)
	if !res.Success {
		fmt.Fprintln(a.out, res.Message)
		return res.Err
	}

	data, err := json.MarshalIndent(res.Bundle, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, string(data))
	return nil
}
