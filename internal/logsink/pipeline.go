package logsink

import (
	"context"
	"sync"
	"time"

	applog "costmanager/internal/log"
)

// Pipeline is the in-process driver: a buffered channel feeding a single
// consumer goroutine. Emit hands a chunk off and returns immediately; a full
// buffer drops the chunk rather than block the emitter.
type Pipeline struct {
	sink   *Sink
	logger *applog.Logger
	ch     chan []byte

	closeOnce sync.Once
	done      chan struct{}
}

func NewPipeline(sink *Sink, buffer int, logger *applog.Logger) *Pipeline {
	if buffer < 1 {
		buffer = 1
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	p := &Pipeline{
		sink:   sink,
		logger: logger.WithComponent(applog.ComponentPipeline),
		ch:     make(chan []byte, buffer),
		done:   make(chan struct{}),
	}
	go p.run()
	return p
}

// Emit queues one serialized record. Never blocks, never fails the caller.
func (p *Pipeline) Emit(raw []byte) {
	select {
	case p.ch <- raw:
	default:
		p.logger.Debug("Log buffer full, record dropped")
	}
}

func (p *Pipeline) run() {
	defer close(p.done)
	for raw := range p.ch {
		// Persist never returns a non-nil error; the call is its own
		// completion signal and the loop proceeds regardless.
		_ = p.sink.Persist(context.Background(), raw)
	}
}

// Close stops accepting records and waits briefly for the consumer to drain.
// Emitters must be stopped before Close; shutdown order is server first,
// pipeline last.
func (p *Pipeline) Close() error {
	p.closeOnce.Do(func() {
		close(p.ch)
	})
	select {
	case <-p.done:
	case <-time.After(5 * time.Second):
		p.logger.Warn("Timed out draining log pipeline")
	}
	return nil
}
