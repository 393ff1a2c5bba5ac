package cli

import (
	"context"
	"fmt"

	"github.com/waxworks/vinylvault/internal/common"
)

// Login prompts for credentials and opens a session on success.
func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "Email address", a.out)
	if err != nil {
		return err
	}

	pw, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	res := a.accounts.Login(ctx, email, pw)
	if !res.Success {
		fmt.Fprintln(a.out, res.Message)
		return res.Err
	}

	a.userName = res.Record.Sensitive.FirstName
	fmt.Fprintf(a.out, "Welcome back, %s!\n", a.userName)
	return nil
}

// Logout deactivates the session and forgets the display name.
func (a *App) Logout(ctx context.Context) error {
	a.userName = ""
	if err := a.keeper.UpdateSession(ctx, false); err != nil {
		a.log.Warn(ctx, "could not deactivate session", "error", err)
	}
	fmt.Fprintln(a.out, "Logged out.")
	return nil
}

// Verify redeems an emailed verification token.
func (a *App) Verify(ctx context.Context) error {
	token, err := GetSimpleText(a.reader, "Verification token", a.out)
	if err != nil {
		return err
	}

	pw, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	res := a.accounts.VerifyEmail(ctx, token, pw)
	if !res.Success {
		fmt.Fprintln(a.out, res.Message)
		return res.Err
	}
	fmt.Fprintln(a.out, "Email verified, your account is now active.")
	return nil
}
