package towerapi

import (
	"github.com/ericfisherdev/towerpanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.AuthAPI      = (*Client)(nil)
	_ driven.TowerAPI     = (*Client)(nil)
	_ driven.ProviderAPI  = (*Client)(nil)
	_ driven.BlankspotAPI = (*Client)(nil)
)

// Client implements the backend API ports on top of a Dispatcher.
type Client struct {
	d            *Dispatcher
	formPayloads bool
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithFormPayloads sends tower create and update payloads as multipart form
// data even when they carry no photo. Backends that only parse form fields
// for towers reject the JSON encoding or read it as empty.
func WithFormPayloads() ClientOption {
	return func(c *Client) { c.formPayloads = true }
}

// NewClient creates a Client that sends every request through d.
func NewClient(d *Dispatcher, opts ...ClientOption) *Client {
	c := &Client{d: d}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Dispatcher returns the underlying dispatcher.
func (c *Client) Dispatcher() *Dispatcher {
	return c.d
}
