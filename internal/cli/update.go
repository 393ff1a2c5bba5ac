package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/waxworks/vinylvault/internal/common"
)

var updatableFields = []string{
	"firstName", "lastName", "email", "phone",
	"shippingAddress", "iban", "bic", "bankAccountOwner",
}

// Update changes one stored field: retrieve, merge, re-encrypt, store.
func (a *App) Update(ctx context.Context) error {
	field, err := GetSimpleText(a.reader,
		"Field to update ("+strings.Join(updatableFields, ", ")+")", a.out)
	if err != nil {
		return err
	}

	known := false
	for _, f := range updatableFields {
		if f == field {
			known = true
			break
		}
	}
	if !known {
		fmt.Fprintf(a.out, "Unknown field %q.\n", field)
		return nil
	}

	value, err := GetSimpleText(a.reader, "New value", a.out)
	if err != nil {
		return err
	}

	pw, err := GetPassword("Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(pw)

	res := a.keeper.UpdateUserData(ctx, map[string]string{field: value}, pw)
	if !res.Success {
		fmt.Fprintln(a.out, res.Message)
		return res.Err
	}
	fmt.Fprintln(a.out, "Updated.")
	return nil
}
