package amqp

import (
	"context"
	"time"

	applog "costmanager/internal/log"
)

type publisher interface {
	PublishLogChunk(ctx context.Context, body []byte) error
}

// Emitter adapts the AMQP client to the activity pipeline's fire-and-forget
// contract: Emit returns immediately, the publish runs on its own goroutine
// with a bounded timeout, and a failed publish costs only that record.
type Emitter struct {
	pub    publisher
	logger *applog.Logger
}

func NewEmitter(client *Client, logger *applog.Logger) *Emitter {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Emitter{
		pub:    client,
		logger: logger.WithComponent(applog.ComponentAMQP),
	}
}

func (e *Emitter) Emit(raw []byte) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := e.pub.PublishLogChunk(ctx, raw); err != nil {
			e.logger.Debug("Dropped log record on publish failure", applog.FieldError, err.Error())
		}
	}()
}
