// Package notify pushes trade and alert messages to operators. Delivery is
// best-effort; a failed notification never interrupts trading.
package notify

import (
	"context"

	"github.com/rs/zerolog"
)

// Notifier delivers one message. Implementations log failures themselves
// and report them to the caller for metrics only.
type Notifier interface {
	Notify(ctx context.Context, msg string) error
}

// Log writes notifications to the structured log. The default sink when no
// external channel is configured.
type Log struct {
	log zerolog.Logger
}

func NewLog(log zerolog.Logger) *Log { return &Log{log: log} }

func (l *Log) Notify(_ context.Context, msg string) error {
	l.log.Info().Str("notification", msg).Msg("notify")
	return nil
}

// Multi fans out to several sinks; the first error wins but every sink is
// attempted.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, msg string) error {
	var first error
	for _, n := range m {
		if err := n.Notify(ctx, msg); err != nil && first == nil {
			first = err
		}
	}
	return first
}
