package health

import "context"

// Pinger checks the availability of a backing store.
type Pinger interface {
	Ping(ctx context.Context) error
}
