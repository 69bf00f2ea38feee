package order

import (
	"encoding/json"
	"fmt"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// Line is one element of a fingerprint: a (name, quantity) pair.
//
// It serializes as a two-element JSON array ["name", quantity], which is
// the on-disk ledger format.
type Line struct {
	Name     string
	Quantity int
}

// MarshalJSON encodes the line as ["name", quantity].
func (l Line) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]any{l.Name, l.Quantity})
}

// UnmarshalJSON decodes ["name", quantity].
func (l *Line) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("fingerprint line: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("fingerprint line: want 2 elements, got %d", len(pair))
	}
	if err := json.Unmarshal(pair[0], &l.Name); err != nil {
		return fmt.Errorf("fingerprint line name: %w", err)
	}
	if err := json.Unmarshal(pair[1], &l.Quantity); err != nil {
		return fmt.Errorf("fingerprint line quantity: %w", err)
	}
	return nil
}

// Fingerprint is the canonical, order-independent signature of an order's
// product content, used for change detection.
//
// CRITICAL: this is the ONLY identity used to decide whether an order
// needs printing. Two orders with the same (name, quantity) multiset have
// the same fingerprint regardless of product ordering or price. Price is
// deliberately excluded: the source does not format prices stably, and a
// price-only correction must not trigger a reprint.
type Fingerprint []Line

// FingerprintOf computes the fingerprint of an order.
//
// Product names are NFC-normalized so that byte-different but canonically
// equal strings (composed vs decomposed accents from the source feed)
// produce the same signature. The result is sorted by name, then quantity,
// making it insensitive to the source's product ordering. Pure function,
// no side effects.
func FingerprintOf(o Order) Fingerprint {
	fp := make(Fingerprint, 0, len(o.Products))
	for _, p := range o.Products {
		fp = append(fp, Line{
			Name:     norm.NFC.String(p.Name),
			Quantity: p.Quantity,
		})
	}
	sort.Slice(fp, func(i, j int) bool {
		if fp[i].Name != fp[j].Name {
			return fp[i].Name < fp[j].Name
		}
		return fp[i].Quantity < fp[j].Quantity
	})
	return fp
}

// Equal reports whether two fingerprints carry identical content.
func (f Fingerprint) Equal(other Fingerprint) bool {
	if len(f) != len(other) {
		return false
	}
	for i := range f {
		if f[i] != other[i] {
			return false
		}
	}
	return true
}
