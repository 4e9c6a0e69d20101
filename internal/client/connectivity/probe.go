// Package connectivity decides online vs. offline code paths by probing the
// story API itself. Interface state (navigator-style "am I on a network")
// says nothing about server reachability, so the probe is the only check the
// client trusts.
package connectivity

import (
	"context"

	"github.com/dmarakov/storypin/internal/client/api"
	"github.com/dmarakov/storypin/internal/common"
)

// TokenFunc supplies the current bearer token, or "" for anonymous probes.
type TokenFunc func(ctx context.Context) string

// Probe performs a minimal story-list request (smallest page) to test
// reachability.
type Probe struct {
	client api.Client
	token  TokenFunc
}

func NewProbe(client api.Client, token TokenFunc) *Probe {
	if token == nil {
		token = func(context.Context) string { return "" }
	}
	return &Probe{client: client, token: token}
}

// IsOnline reports whether the API answered the probe successfully. Transport
// and server failures both come back as false, never as an error.
func (p *Probe) IsOnline(ctx context.Context) bool {
	_, err := p.client.GetStories(ctx, api.ListParams{Size: 1, Token: p.token(ctx)})
	return err == nil
}

// Check is the gate used before every write and before the remote branch of
// every read: it returns common.ErrOffline when the probe fails.
func (p *Probe) Check(ctx context.Context) error {
	if !p.IsOnline(ctx) {
		return common.ErrOffline
	}
	return nil
}
