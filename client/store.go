package client

import (
	"context"
	"strings"

	"github.com/xraph/haulage/id"
)

type Store interface {
	CreateClient(ctx context.Context, c *Client) error
	GetClient(ctx context.Context, clientID id.ClientID) (*Client, error)
	UpdateClient(ctx context.Context, c *Client) error
	ListClients(ctx context.Context, opts ListOpts) ([]*Client, error)
}

// ListOpts pages through clients. Results are newest first.
type ListOpts struct {
	// Search keeps clients whose name contains it, ignoring case, or whose
	// phone contains it.
	Search string
	Limit  int
	Offset int
}

// Match reports whether c passes the search filter.
func (o ListOpts) Match(c *Client) bool {
	term := strings.TrimSpace(o.Search)
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(c.Name), strings.ToLower(term)) ||
		strings.Contains(c.Phone, term)
}
