package publishers

import "context"

// Publisher delivers prediction events to one downstream sink. Implementations that
// hold connections also implement io.Closer.
type Publisher interface {
	ID() string
	Type() string
	Publish(ctx context.Context, evt Event) error
}
