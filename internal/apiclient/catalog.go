package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Concert is a listed concert
type Concert struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Artist       string        `json:"artist"`
	Venue        string        `json:"venue"`
	Performances []Performance `json:"performances"`
}

// Performance is one dated performance of a concert
type Performance struct {
	ID       string    `json:"id"`
	StartsAt time.Time `json:"starts_at"`
}

// Ticket is an issued ticket
type Ticket struct {
	ID            string `json:"id"`
	Code          string `json:"code"`
	TicketType    string `json:"ticket_type"`
	PerformanceID string `json:"performance_id"`
	PriceCents    int64  `json:"price_cents"`
}

// FormatCents renders an amount in cents as dollars, e.g. -150 as "-$1.50"
func FormatCents(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s$%d.%02d", sign, cents/100, cents%100)
}

// Order is a customer's order and its tickets
type Order struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	TotalCents int64     `json:"total_cents"`
	CreatedAt  time.Time `json:"created_at"`
	Tickets    []Ticket  `json:"tickets"`
}

// User is a user record as seen by administrators
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Roles     []string  `json:"roles"`
	CreatedAt time.Time `json:"created_at"`
}

// ListConcerts returns all concerts
func (c *Client) ListConcerts(ctx context.Context) ([]Concert, error) {
	var concerts []Concert
	if err := c.do(ctx, http.MethodGet, "/api/concerts", nil, &concerts); err != nil {
		return nil, fmt.Errorf("failed to list concerts: %w", err)
	}
	return concerts, nil
}

// ListOrders returns the authenticated user's orders
func (c *Client) ListOrders(ctx context.Context) ([]Order, error) {
	var orders []Order
	if err := c.do(ctx, http.MethodGet, "/api/orders", nil, &orders); err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

// GetOrder returns one order with its tickets
func (c *Client) GetOrder(ctx context.Context, id string) (*Order, error) {
	var order Order
	if err := c.do(ctx, http.MethodGet, "/api/orders/"+url.PathEscape(id), nil, &order); err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return &order, nil
}

// ListUsers returns all users (admin only)
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.do(ctx, http.MethodGet, "/api/users", nil, &users); err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}
