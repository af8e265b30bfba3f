package haulage

import (
	"context"
	"fmt"

	"github.com/xraph/haulage/client"
)

// AddClient creates a client with zeroed totals.
func (l *Ledger) AddClient(ctx context.Context, in client.Input) (*client.Client, error) {
	in = in.Normalize()
	if err := check(in); err != nil {
		return nil, err
	}

	c := client.New(in)
	if err := l.store.CreateClient(ctx, c); err != nil {
		return nil, fmt.Errorf("add client: %w", err)
	}

	l.plugins.EmitClientCreated(ctx, c)
	l.mutated(ctx, "client.created", c.ID)
	return c, nil
}

// UpdateClient replaces a client's contact fields. Running totals and bills
// already issued (which carry their own name and address snapshot) are not
// touched.
func (l *Ledger) UpdateClient(ctx context.Context, clientID ID, in client.Input) (*client.Client, error) {
	in = in.Normalize()
	if err := check(in); err != nil {
		return nil, err
	}

	var before, after *client.Client
	err := l.withClient(ctx, clientID, func() error {
		c, err := l.store.GetClient(ctx, clientID)
		if err != nil {
			return fmt.Errorf("update client %s: %w", clientID, err)
		}
		cp := *c
		before = &cp

		c.SetContact(in)
		c.Touch()
		if err := l.store.UpdateClient(ctx, c); err != nil {
			return fmt.Errorf("update client %s: %w", clientID, err)
		}
		after = c
		return nil
	})
	if err != nil {
		return nil, err
	}

	l.plugins.EmitClientUpdated(ctx, before, after)
	l.mutated(ctx, "client.updated", clientID)
	return after, nil
}

// GetClient returns a client by ID.
func (l *Ledger) GetClient(ctx context.Context, clientID ID) (*client.Client, error) {
	return l.store.GetClient(ctx, clientID)
}

// ListClients returns clients, newest first.
func (l *Ledger) ListClients(ctx context.Context, opts client.ListOpts) ([]*client.Client, error) {
	return l.store.ListClients(ctx, opts)
}
