// Package activity produces the structured records behind the append-only
// activity log. Every significant operation calls Record; the record lands
// on the process log and, serialized, on the log pipeline. The caller's
// outcome is never gated on either.
package activity

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	applog "costmanager/internal/log"
)

// Emitter accepts one serialized record without blocking and without
// reporting failure. The channel pipeline and the AMQP publisher implement it.
type Emitter interface {
	Emit(raw []byte)
}

type Recorder struct {
	logger  *applog.Logger
	emitter Emitter
}

// NewRecorder builds a recorder. A nil emitter means records go to the
// process log only (useful in tests and before the pipeline is up).
func NewRecorder(logger *applog.Logger, emitter Emitter) *Recorder {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Recorder{
		logger:  logger.WithComponent(applog.ComponentActivity),
		emitter: emitter,
	}
}

// Record emits one structured record carrying the action tag, the message
// (as "msg"), and the full fields mapping as payload. Fire-and-forget: no
// return value, never panics, and persistence happens (or fails) entirely
// behind the emitter.
func (r *Recorder) Record(ctx context.Context, action string, fields map[string]any, message string) {
	payload := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	if action != "" {
		payload["action"] = action
	}

	args := make([]any, 0, 2*len(payload))
	for k, v := range payload {
		args = append(args, k, v)
	}
	r.logger.InfoContext(ctx, message, args...)

	if r.emitter == nil {
		return
	}
	if _, ok := payload["msg"]; !ok && message != "" {
		payload["msg"] = message
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		// An unserializable payload only costs this record its pipeline copy.
		r.logger.Debug("Skipping unserializable activity record", applog.FieldAction, action)
		return
	}
	r.emitter.Emit(raw)
}

// RequestSnapshot captures the inbound-request shape embedded in request
// records under the "req" key. The sink derives the HTTP_REQUEST action and
// the userid from it.
func RequestSnapshot(r *http.Request) map[string]any {
	headers := map[string]any{}
	for _, h := range []string{"x-user-id", "user-agent", "content-type"} {
		if v := r.Header.Get(h); v != "" {
			headers[h] = v
		}
	}
	return map[string]any{
		"method":  r.Method,
		"url":     r.URL.String(),
		"remote":  r.RemoteAddr,
		"headers": headers,
	}
}

// Fields is a small convenience for building payload mappings inline.
func Fields(kv ...any) map[string]any {
	fields := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok || strings.TrimSpace(key) == "" {
			continue
		}
		fields[key] = kv[i+1]
	}
	return fields
}
