// Package realtime pushes fresh dashboard figures to subscribers whenever a
// user's transactions change.
package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// Channel is the PostgreSQL notification channel fed by the transactions trigger
const Channel = "transactions_changed"

const pingInterval = 90 * time.Second

// Event describes one change to a user's transactions. An Event with an empty
// UserID means notifications may have been lost and everyone should refresh.
type Event struct {
	UserID string `json:"user_id"`
	Op     string `json:"op"`
	ID     string `json:"id"`
}

// Listener turns PostgreSQL notifications into Events
type Listener struct {
	listener *pq.Listener
	events   chan Event
	log      *logrus.Logger
}

// NewListener connects and subscribes to Channel
func NewListener(connStr string, log *logrus.Logger) (*Listener, error) {
	report := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			log.WithError(err).WithField("event", ev).Warn("Notification listener connection problem")
		}
	}
	l := pq.NewListener(connStr, 10*time.Second, time.Minute, report)
	if err := l.Listen(Channel); err != nil {
		l.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", Channel, err)
	}
	return &Listener{
		listener: l,
		events:   make(chan Event, 64),
		log:      log,
	}, nil
}

// Events delivers parsed notifications; it is closed when Run returns
func (l *Listener) Events() <-chan Event {
	return l.events
}

// Run forwards notifications until ctx is done
func (l *Listener) Run(ctx context.Context) {
	defer close(l.events)
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-l.listener.Notify:
			if n == nil {
				// reconnected; anything sent meanwhile is gone
				l.log.Info("Notification listener reconnected")
				l.forward(ctx, Event{Op: "resync"})
				continue
			}
			ev, err := parseEvent(n.Extra)
			if err != nil {
				l.log.WithError(err).WithField("payload", n.Extra).Warn("Ignoring malformed notification")
				continue
			}
			l.forward(ctx, ev)
		case <-time.After(pingInterval):
			go func() {
				if err := l.listener.Ping(); err != nil {
					l.log.WithError(err).Warn("Notification listener ping failed")
				}
			}()
		}
	}
}

func (l *Listener) forward(ctx context.Context, ev Event) {
	select {
	case l.events <- ev:
	case <-ctx.Done():
	}
}

// Close stops the underlying connection
func (l *Listener) Close() error {
	return l.listener.Close()
}

func parseEvent(payload string) (Event, error) {
	var ev Event
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return Event{}, fmt.Errorf("failed to decode notification: %w", err)
	}
	if ev.UserID == "" {
		return Event{}, fmt.Errorf("notification has no user_id")
	}
	return ev, nil
}
