package delivery

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Deliverer sends a finished report somewhere.
type Deliverer interface {
	Name() string
	Deliver(ctx context.Context, text string) error
}

// Multi fans a report out to every sink in order. A failing sink does not stop
// the others; all failures are joined into the returned error.
type Multi struct {
	sinks  []Deliverer
	logger *zap.Logger
}

func NewMulti(logger *zap.Logger, sinks ...Deliverer) *Multi {
	return &Multi{sinks: sinks, logger: logger}
}

func (m *Multi) Name() string { return "multi" }

func (m *Multi) Len() int { return len(m.sinks) }

func (m *Multi) Deliver(ctx context.Context, text string) error {
	return m.DeliverEach(ctx, text, nil)
}

// DeliverEach is Deliver with a per-sink callback, used for accounting.
func (m *Multi) DeliverEach(ctx context.Context, text string, done func(sink string, err error)) error {
	var errs []error
	for _, s := range m.sinks {
		err := s.Deliver(ctx, text)
		if done != nil {
			done(s.Name(), err)
		}
		if err != nil {
			m.logger.Error("error sending message", zap.String("sink", s.Name()), zap.Error(err))
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
			continue
		}
		m.logger.Info("sent message", zap.String("sink", s.Name()), zap.Int("bytes", len(text)))
	}
	return errors.Join(errs...)
}
