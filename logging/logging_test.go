package logging

import (
	"bytes"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
)

func TestVerbosityControlsLevel(t *testing.T) {
	cases := []struct {
		verbosity int
		want      logrus.Level
	}{
		{0, logrus.WarnLevel},
		{1, logrus.InfoLevel},
		{2, logrus.DebugLevel},
		{3, logrus.TraceLevel},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		l := New(&buf, c.verbosity)
		if l.GetLevel() != c.want {
			t.Fatalf("verbosity %d: level = %v, want %v", c.verbosity, l.GetLevel(), c.want)
		}
	}
}

func TestComponentScopedFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, 2)
	l.Component("mp3-decoder", "audio_decoder.mp3").Info("populated ports")

	out := buf.String()
	if !strings.Contains(out, "component=mp3-decoder") {
		t.Fatalf("log line missing component field: %s", out)
	}
	if !strings.Contains(out, "role=audio_decoder.mp3") {
		t.Fatalf("log line missing role field: %s", out)
	}
}
