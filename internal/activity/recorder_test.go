package activity

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
)

type captureEmitter struct {
	raw [][]byte
}

func (c *captureEmitter) Emit(raw []byte) {
	c.raw = append(c.raw, raw)
}

func TestRecordEmitsActionAndFields(t *testing.T) {
	emitter := &captureEmitter{}
	rec := NewRecorder(nil, emitter)

	rec.Record(context.Background(), "ENDPOINT_ADD_ENTER", map[string]any{
		"userid": 7,
		"sum":    12.5,
	}, "add cost called")

	if len(emitter.raw) != 1 {
		t.Fatalf("emitted %d records, want 1", len(emitter.raw))
	}

	var payload map[string]any
	if err := json.Unmarshal(emitter.raw[0], &payload); err != nil {
		t.Fatalf("emitted record is not JSON: %v", err)
	}
	if payload["action"] != "ENDPOINT_ADD_ENTER" {
		t.Errorf("action = %v", payload["action"])
	}
	if payload["userid"] != float64(7) {
		t.Errorf("userid = %v", payload["userid"])
	}
	if payload["sum"] != 12.5 {
		t.Errorf("sum = %v", payload["sum"])
	}
	if payload["msg"] != "add cost called" {
		t.Errorf("msg = %v, want the record message", payload["msg"])
	}
}

func TestRecordMessageNeverClobbersField(t *testing.T) {
	emitter := &captureEmitter{}
	rec := NewRecorder(nil, emitter)

	rec.Record(context.Background(), "LOG", map[string]any{"msg": "from fields"}, "record message")

	var payload map[string]any
	if err := json.Unmarshal(emitter.raw[0], &payload); err != nil {
		t.Fatal(err)
	}
	if payload["msg"] != "from fields" {
		t.Errorf("msg = %v, want the caller's field untouched", payload["msg"])
	}
}

func TestRecordWithoutEmitter(t *testing.T) {
	rec := NewRecorder(nil, nil)

	// Must not panic; the record goes to the process log only.
	rec.Record(context.Background(), "LOG", nil, "no pipeline configured")
}

func TestRecordNilFields(t *testing.T) {
	emitter := &captureEmitter{}
	rec := NewRecorder(nil, emitter)

	rec.Record(context.Background(), "LOG", nil, "empty payload")

	if len(emitter.raw) != 1 {
		t.Fatalf("emitted %d records, want 1", len(emitter.raw))
	}
	var payload map[string]any
	if err := json.Unmarshal(emitter.raw[0], &payload); err != nil {
		t.Fatal(err)
	}
	if payload["action"] != "LOG" {
		t.Errorf("action = %v", payload["action"])
	}
}

func TestRecordUnserializablePayloadDropped(t *testing.T) {
	emitter := &captureEmitter{}
	rec := NewRecorder(nil, emitter)

	// A func value cannot be marshaled; the pipeline copy is skipped but the
	// call itself must not fail.
	rec.Record(context.Background(), "LOG", map[string]any{"bad": func() {}}, "unserializable")

	if len(emitter.raw) != 0 {
		t.Errorf("emitted %d records, want 0", len(emitter.raw))
	}
}

func TestRequestSnapshot(t *testing.T) {
	r := httptest.NewRequest("GET", "/api/report?id=1&year=2025&month=2", nil)
	r.Header.Set("X-User-Id", "3")
	r.Header.Set("User-Agent", "test-agent")

	snap := RequestSnapshot(r)

	if snap["method"] != "GET" {
		t.Errorf("method = %v", snap["method"])
	}
	if snap["url"] != "/api/report?id=1&year=2025&month=2" {
		t.Errorf("url = %v", snap["url"])
	}
	headers, ok := snap["headers"].(map[string]any)
	if !ok {
		t.Fatalf("headers = %T", snap["headers"])
	}
	if headers["x-user-id"] != "3" {
		t.Errorf("x-user-id = %v", headers["x-user-id"])
	}
	if headers["user-agent"] != "test-agent" {
		t.Errorf("user-agent = %v", headers["user-agent"])
	}
}

func TestFieldsBuilder(t *testing.T) {
	f := Fields("userid", 1, "year", 2025, "", "dropped", 42, "dropped")
	if len(f) != 2 {
		t.Fatalf("fields = %v", f)
	}
	if f["userid"] != 1 || f["year"] != 2025 {
		t.Errorf("fields = %v", f)
	}
}
