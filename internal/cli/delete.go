package cli

import (
	"context"
	"fmt"
)

// Delete removes the stored account after an explicit confirmation. The
// operation is idempotent and needs no password: it destroys, it does not
// reveal.
func (a *App) Delete(ctx context.Context) error {
	ok, err := GetConfirm(a.reader, "Really delete the stored account data? This cannot be undone.", a.out)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(a.out, "Aborted.")
		return nil
	}

	if err := a.accounts.Unregister(ctx); err != nil {
		fmt.Fprintln(a.out, "Could not delete the stored data.")
		return err
	}

	a.userName = ""
	fmt.Fprintln(a.out, "All account data removed.")
	return nil
}
