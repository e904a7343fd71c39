package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf).With().Str("component", "segmenter").Logger()
	l.Info().Msg("hello")

	out := buf.String()
	if !strings.Contains(out, `"component":"segmenter"`) || !strings.Contains(out, `"time":`) {
		t.Fatalf("unexpected log line: %s", out)
	}
}
