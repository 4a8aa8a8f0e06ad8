package tunnel

import (
	"context"
	"net"
)

// Tunnel exposes a local server via a public HTTPS URL. Google only
// delivers calendar push notifications to HTTPS endpoints, so development
// boxes without a public address run the webhook behind one of these.
type Tunnel interface {
	Start(ctx context.Context) (publicURL string, err error)
	Close() error
	PublicURL() string
	Listener() net.Listener
}
