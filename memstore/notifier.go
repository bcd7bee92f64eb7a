package memstore

import (
	"context"
	"sync"

	"github.com/vibehut/huddle/types"
)

// Notification is a single delivered notification, retained for
// inspection.
type Notification struct {
	UserID  string
	Kind    types.NotifyKind
	Payload []byte
}

// Notifier is an in-memory implementation of types.Notifier that records
// every delivery.
type Notifier struct {
	mu       sync.Mutex
	sent     []Notification
	failWith error
}

// Compile-time assertion that Notifier implements types.Notifier.
var _ types.Notifier = (*Notifier)(nil)

// NewNotifier creates an empty recording notifier.
//
// Returns:
//   - *Notifier: Initialized notifier
func NewNotifier() *Notifier {
	return &Notifier{}
}

// FailWith makes subsequent deliveries return err. Pass nil to restore
// normal delivery. Test helper.
func (n *Notifier) FailWith(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failWith = err
}

// Notify records the notification.
func (n *Notifier) Notify(ctx context.Context, userID string, kind types.NotifyKind, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.failWith != nil {
		return n.failWith
	}
	n.sent = append(n.sent, Notification{UserID: userID, Kind: kind, Payload: payload})

	return nil
}

// Sent returns a copy of every recorded notification.
func (n *Notifier) Sent() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()

	out := make([]Notification, len(n.sent))
	copy(out, n.sent)

	return out
}
