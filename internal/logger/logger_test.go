package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
)

func TestNewTagsService(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, "debug", "json")
	log.Info().Str("component", "test").Msg("hallo")

	var line map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if line["service"] != Service || line["message"] != "hallo" || line["component"] != "test" {
		t.Errorf("line = %v", line)
	}
}

func TestNewLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{"warn", zerolog.WarnLevel},
		{"", zerolog.InfoLevel},
		{"laut", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		New(&bytes.Buffer{}, tt.level, "json")
		if got := zerolog.GlobalLevel(); got != tt.want {
			t.Errorf("level %q: global level = %v, want %v", tt.level, got, tt.want)
		}
	}
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
}
