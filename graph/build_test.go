package graph

import (
	"os"
	"testing"
	"time"

	"github.com/momentics/tizonia-go/sink"
)

func TestBuildFileGraphStreamsFileIntoSink(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "track-*.raw")
	if err != nil {
		t.Fatalf("CreateTemp: %v", err)
	}
	payload := []byte("some pcm-shaped bytes for the pipeline to move")
	if _, err := f.Write(payload); err != nil {
		t.Fatalf("Write: %v", err)
	}
	f.Close()

	mem := sink.NewMemorySink()
	ops, fsm, err := BuildFileGraph(f.Name(), mem)
	if err != nil {
		t.Fatalf("BuildFileGraph: %v", err)
	}
	fsm.Start()

	ops.OmxLoaded2Idle(sourceHandle)
	ops.OmxLoaded2Idle(sinkHandle)
	ops.OmxIdle2Exe(sourceHandle)
	ops.OmxIdle2Exe(sinkHandle)

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if len(mem.Bytes()) >= len(payload) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	if got := string(mem.Bytes()); got != string(payload) {
		t.Fatalf("sink got %q, want %q", got, string(payload))
	}
}

func TestProbeParamsCachesByPath(t *testing.T) {
	probeCache.Flush()
	p1 := probeParams("/tracks/one.mp3")
	if p1.Encoding != "mp3" {
		t.Fatalf("Encoding = %q, want mp3", p1.Encoding)
	}
	p2 := probeParams("/tracks/one.mp3")
	if p2 != p1 {
		t.Fatalf("expected cached PortParams to be reused, got a different value")
	}
	if _, ok := probeCache.Get("/tracks/one.mp3"); !ok {
		t.Fatalf("expected probeCache to retain an entry for the path")
	}
}
