package pitcher

import "context"

// Provider looks a pitcher up in exactly one origin. Implementations return
// ErrNotFound when the origin has no usable line for the pitcher and any
// other error for transport or parse failures.
type Provider interface {
	Source() Source
	LookupPitcher(ctx context.Context, team, name string) (Fact, error)
}

// Fetcher is the total form of Provider: it never returns an error and
// reports absence with ok=false.
type Fetcher interface {
	Source() Source
	FetchPitcherFact(ctx context.Context, query Query) (Fact, bool)
}
