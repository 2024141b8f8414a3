// Package logsink persists serialized activity-log records as documents.
// Delivery is best effort: a chunk that cannot be parsed or stored is
// dropped without surfacing an error, so the pipeline behind it never
// stalls and the action that triggered the record never observes a failure.
package logsink

import (
	"context"

	"costmanager/internal/core"
	applog "costmanager/internal/log"
)

// Store is the slice of the record store the sink writes to.
type Store interface {
	InsertLog(ctx context.Context, rec core.LogRecord) error
}

type Sink struct {
	store  Store
	logger *applog.Logger
}

func NewSink(store Store, logger *applog.Logger) *Sink {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Sink{
		store:  store,
		logger: logger.WithComponent(applog.ComponentSink),
	}
}

// Persist parses one raw chunk and writes the resulting record. It always
// returns nil: parse failures are silent no-ops and store failures are
// logged and swallowed, signaling the pipeline driver to move on either way.
func (s *Sink) Persist(ctx context.Context, raw []byte) error {
	rec, ok := Parse(raw)
	if !ok {
		return nil
	}

	if err := s.store.InsertLog(ctx, rec); err != nil {
		s.logger.WarnContext(ctx, "Dropped log record",
			applog.FieldError, err.Error(),
			applog.FieldAction, rec.Action)
	}
	return nil
}
