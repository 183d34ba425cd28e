package cursor

import (
	"encoding/base64"
	"testing"

	"github.com/rushteam/feedkit/core"
)

// captureLogger 收集日志事件，用于断言 warn 行为。
type captureLogger struct {
	events []string
}

func (l *captureLogger) Info(event string, _ map[string]any)  { l.events = append(l.events, event) }
func (l *captureLogger) Warn(event string, _ map[string]any)  { l.events = append(l.events, event) }
func (l *captureLogger) Error(event string, _ map[string]any) { l.events = append(l.events, event) }

func (l *captureLogger) count(event string) int {
	n := 0
	for _, e := range l.events {
		if e == event {
			n++
		}
	}
	return n
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec(nil)

	tests := []struct {
		name string
		cur  *Cursor
	}{
		{
			name: "cache cursor with partition",
			cur:  &Cursor{Source: core.SourceCache, DocID: "doc-42", Region: "us", Locale: "en"},
		},
		{
			name: "cache cursor without partition",
			cur:  &Cursor{Source: core.SourceCache, DocID: "doc-1"},
		},
		{
			name: "fallback cursor",
			cur:  &Cursor{Source: core.SourceFallback, DocID: "content-9"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := codec.Encode(tt.cur)
			if token == "" {
				t.Fatal("Encode() returned empty token")
			}
			got := codec.Decode(token)
			if got == nil {
				t.Fatal("Decode() returned nil for valid token")
			}
			if *got != *tt.cur {
				t.Errorf("round trip mismatch: got %+v, want %+v", got, tt.cur)
			}
		})
	}
}

func TestCodec_EncodeEmpty(t *testing.T) {
	codec := NewCodec(nil)

	if got := codec.Encode(nil); got != "" {
		t.Errorf("Encode(nil) = %q, want empty", got)
	}
	if got := codec.Encode(&Cursor{Source: core.SourceCache}); got != "" {
		t.Errorf("Encode(empty docID) = %q, want empty", got)
	}
}

func TestCodec_DecodeNeverFails(t *testing.T) {
	tests := []struct {
		name     string
		token    string
		wantWarn bool
	}{
		{name: "empty token", token: "", wantWarn: false},
		{name: "not base64", token: "%%%not-base64%%%", wantWarn: true},
		{name: "base64 but not json", token: base64.RawURLEncoding.EncodeToString([]byte("hello")), wantWarn: true},
		{name: "json missing doc id", token: base64.RawURLEncoding.EncodeToString([]byte(`{"s":"cache"}`)), wantWarn: true},
		{name: "json missing source", token: base64.RawURLEncoding.EncodeToString([]byte(`{"d":"doc-1"}`)), wantWarn: true},
		{name: "unknown source", token: base64.RawURLEncoding.EncodeToString([]byte(`{"s":"mystery","d":"doc-1"}`)), wantWarn: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &captureLogger{}
			codec := NewCodec(log)
			if got := codec.Decode(tt.token); got != nil {
				t.Errorf("Decode(%q) = %+v, want nil", tt.token, got)
			}
			warned := log.count("cursor_decode_failed") > 0
			if warned != tt.wantWarn {
				t.Errorf("warn logged = %v, want %v", warned, tt.wantWarn)
			}
		})
	}
}
