package logsink

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"

	"costmanager/internal/core"
)

// userHeader is the conventional user-identifying request header mirrored
// into request snapshots.
const userHeader = "x-user-id"

// Parse turns one raw serialized chunk into a LogRecord. The second return
// is false when the chunk is not a JSON object; such chunks are skipped
// silently so one malformed line never stops the lines behind it.
//
// Derivation, when the chunk carries no explicit value:
//   - action: a record holding an inbound request snapshot ("req") gets
//     HTTP_REQUEST, anything else the generic LOG tag,
//   - userid: parsed from the request snapshot's x-user-id header; absent or
//     non-numeric leaves it unset.
func Parse(raw []byte) (core.LogRecord, bool) {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		return core.LogRecord{}, false
	}

	rec := core.LogRecord{
		ID:      uuid.NewString(),
		At:      time.Now().UTC(),
		Payload: payload,
	}

	rec.Action = deriveAction(payload)
	if id, ok := deriveUserID(payload); ok {
		rec.UserID = &id
	}
	return rec, true
}

func deriveAction(payload map[string]any) string {
	if a, ok := payload["action"].(string); ok && a != "" {
		return a
	}
	if _, ok := payload["req"]; ok {
		return core.ActionHTTPRequest
	}
	return core.ActionLog
}

func deriveUserID(payload map[string]any) (int64, bool) {
	if id, ok := toInt64(payload["userid"]); ok {
		return id, true
	}

	req, ok := payload["req"].(map[string]any)
	if !ok {
		return 0, false
	}
	headers, ok := req["headers"].(map[string]any)
	if !ok {
		return 0, false
	}
	return toInt64(headers[userHeader])
}

// toInt64 accepts the numeric shapes a JSON round trip can produce.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		return int64(n), true
	case json.Number:
		id, err := n.Int64()
		return id, err == nil
	case string:
		id, err := strconv.ParseInt(n, 10, 64)
		return id, err == nil
	case int64:
		return n, true
	case int:
		return int64(n), true
	default:
		return 0, false
	}
}
