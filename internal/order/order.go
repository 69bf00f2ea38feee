package order

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Status is the lifecycle state of an order as reported by the source.
// Only StatusPending orders are actionable for printing; every other
// status is ignored without touching the ledger.
type Status string

const (
	StatusPending   Status = "pending"
	StatusPreparing Status = "preparing"
	StatusDelivered Status = "delivered"
	StatusCancelled Status = "cancelled"
)

// Product is a single line item on an order.
// Price precision is whatever the source sent; amounts are decimal,
// never float (the source does not guarantee minor-unit precision).
type Product struct {
	Name     string
	Quantity int
	Price    decimal.Decimal
}

// Order is one restaurant order as returned by the order source.
type Order struct {
	ID           string
	Status       Status
	CustomerName string
	Table        string
	Products     []Product
	Total        decimal.Decimal
}

// Actionable reports whether the order is eligible for dispatch.
func (o Order) Actionable() bool {
	return o.Status == StatusPending
}

// Validate checks the invariants required before an order may enter
// fingerprinting: a non-empty id and well-formed products. Orders that
// fail validation are skipped at the fetch boundary rather than
// propagated with partial data.
func (o Order) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("order has empty id")
	}
	if len(o.Products) == 0 {
		return fmt.Errorf("order %s has no products", o.ID)
	}
	for i, p := range o.Products {
		if p.Name == "" {
			return fmt.Errorf("order %s: product[%d] has empty name", o.ID, i)
		}
		if p.Quantity <= 0 {
			return fmt.Errorf("order %s: product %q has non-positive quantity %d", o.ID, p.Name, p.Quantity)
		}
	}
	return nil
}
