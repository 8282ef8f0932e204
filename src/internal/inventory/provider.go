package inventory

import "context"

// Provider produces inventory snapshots. Implementations must not mutate a
// snapshot after returning it.
type Provider interface {
	Snapshot(ctx context.Context) (*Snapshot, error)
}

// ProviderFunc adapts a function to Provider.
type ProviderFunc func(ctx context.Context) (*Snapshot, error)

func (f ProviderFunc) Snapshot(ctx context.Context) (*Snapshot, error) {
	return f(ctx)
}

// Static returns a Provider that always hands out snap.
func Static(snap *Snapshot) Provider {
	return ProviderFunc(func(context.Context) (*Snapshot, error) {
		return snap, nil
	})
}
