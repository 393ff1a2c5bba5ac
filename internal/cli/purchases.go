package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/waxworks/vinylvault/internal/ledger"
)

// Purchases lists the purchase ledger.
func (a *App) Purchases(ctx context.Context) error {
	items, err := a.ledger.List(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "Could not read the purchase ledger.")
		return err
	}
	if len(items) == 0 {
		fmt.Fprintln(a.out, "No purchases recorded.")
		return nil
	}
	for _, p := range items {
		fmt.Fprintf(a.out, "%s  %s - %s  x%d  %d.%02d EUR\n",
			p.PurchasedAt.Format("2006-01-02"), p.Artist, p.Title,
			p.Quantity, p.PriceCents/100, p.PriceCents%100)
	}
	return nil
}

// AddPurchase records one ledger entry.
func (a *App) AddPurchase(ctx context.Context) error {
	title, err := GetSimpleText(a.reader, "Record title", a.out)
	if err != nil {
		return err
	}
	artist, err := GetSimpleText(a.reader, "Artist", a.out)
	if err != nil {
		return err
	}
	qtyText, err := GetSimpleText(a.reader, "Quantity", a.out)
	if err != nil {
		return err
	}
	qty, err := strconv.Atoi(qtyText)
	if err != nil || qty <= 0 {
		fmt.Fprintln(a.out, "Quantity must be a positive number.")
		return nil
	}
	priceText, err := GetSimpleText(a.reader, "Price in cents", a.out)
	if err != nil {
		return err
	}
	price, err := strconv.Atoi(priceText)
	if err != nil || price < 0 {
		fmt.Fprintln(a.out, "Price must be a non-negative number of cents.")
		return nil
	}

	id, err := a.ledger.Add(ctx, ledger.Purchase{
		Title:      title,
		Artist:     artist,
		Quantity:   qty,
		PriceCents: price,
	})
	if err != nil {
		fmt.Fprintln(a.out, "Could not record the purchase.")
		return err
	}
	fmt.Fprintf(a.out, "Recorded purchase %s.\n", id)
	return nil
}
