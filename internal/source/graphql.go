// Package source fetches the current order list from the restaurant
// backend.
package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/machinebox/graphql"
	"github.com/shopspring/decimal"

	"github.com/choripam/printd/internal/order"
)

// Fetcher returns the current full list of orders for a restaurant.
// Any error means "no data this cycle": the caller skips dispatch and
// retries next cycle. Never fatal.
type Fetcher interface {
	FetchOrders(ctx context.Context) ([]order.Order, error)
}

const ordersQuery = `
query GetOrders($restaurantId: String!) {
  orders(restaurantId: $restaurantId) {
    id
    status
    customer { name }
    products { name, quantity, price }
    total
    table
  }
}`

// GraphQL fetches orders from a GraphQL endpoint. Requests carry a
// bounded timeout so a hung backend delays at most one cycle.
type GraphQL struct {
	client       *graphql.Client
	restaurantID string
}

// NewGraphQL creates a fetcher for the given endpoint and restaurant.
func NewGraphQL(endpoint, restaurantID string, timeout time.Duration) *GraphQL {
	httpClient := &http.Client{Timeout: timeout}
	return &GraphQL{
		client:       graphql.NewClient(endpoint, graphql.WithHTTPClient(httpClient)),
		restaurantID: restaurantID,
	}
}

type wireProduct struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type wireOrder struct {
	ID       string `json:"id"`
	Status   string `json:"status"`
	Customer struct {
		Name string `json:"name"`
	} `json:"customer"`
	Products []wireProduct   `json:"products"`
	Total    decimal.Decimal `json:"total"`
	Table    string          `json:"table"`
}

// FetchOrders queries the backend. Transport failures and GraphQL
// response errors are both returned as plain errors; malformed orders
// are skipped with a warning rather than propagated into fingerprinting.
func (g *GraphQL) FetchOrders(ctx context.Context) ([]order.Order, error) {
	req := graphql.NewRequest(ordersQuery)
	req.Var("restaurantId", g.restaurantID)

	var resp struct {
		Orders []wireOrder `json:"orders"`
	}
	if err := g.client.Run(ctx, req, &resp); err != nil {
		return nil, fmt.Errorf("fetch orders for %s: %w", g.restaurantID, err)
	}

	orders := make([]order.Order, 0, len(resp.Orders))
	for _, w := range resp.Orders {
		o := order.Order{
			ID:           w.ID,
			Status:       order.Status(w.Status),
			CustomerName: w.Customer.Name,
			Table:        w.Table,
			Total:        w.Total,
		}
		for _, p := range w.Products {
			o.Products = append(o.Products, order.Product{
				Name:     p.Name,
				Quantity: p.Quantity,
				Price:    p.Price,
			})
		}
		if err := o.Validate(); err != nil {
			slog.Warn("skipping malformed order", "error", err)
			continue
		}
		orders = append(orders, o)
	}
	return orders, nil
}
