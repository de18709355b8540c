package manager

import (
	"sync"
	"testing"
	"time"

	"github.com/momentics/tizonia-go/graph"
	"github.com/momentics/tizonia-go/playlist"
)

type recordingResourceClaim struct {
	mu       sync.Mutex
	claimed  []string
	released []string
}

func (r *recordingResourceClaim) Claim(role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claimed = append(r.claimed, role)
	return nil
}

func (r *recordingResourceClaim) Release(role string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released = append(r.released, role)
}

func fakeFactory(url string) (*graph.Ops, *graph.FSM, error) {
	ops := graph.New()
	fsm := graph.NewFSM(ops, nil)
	return ops, fsm, nil
}

func TestManagerAdvancesThroughPlaylist(t *testing.T) {
	src := playlist.NewStaticListSource([]string{"a.mp3", "b.mp3"}, nil)
	it := playlist.NewIterator(src, playlist.LoopNone)
	m := New(it, func(string) GraphFactory { return fakeFactory })

	if err := m.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if m.Status() != StatusPlaying {
		t.Fatalf("status = %v, want Playing", m.Status())
	}
	url, _ := it.Current()
	if url != "a.mp3" {
		t.Fatalf("current url = %q, want a.mp3", url)
	}

	if err := m.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	url, _ = it.Current()
	if url != "b.mp3" {
		t.Fatalf("current url after Next = %q, want b.mp3", url)
	}

	m.Quit()
}

func TestManagerClaimsAndReleasesResourcesAcrossTracks(t *testing.T) {
	src := playlist.NewStaticListSource([]string{"a.mp3", "b.wav"}, nil)
	it := playlist.NewIterator(src, playlist.LoopNone)
	rc := &recordingResourceClaim{}
	m := New(it, func(string) GraphFactory { return fakeFactory }).WithResourceClaim(rc)

	if err := m.Play(); err != nil {
		t.Fatalf("Play: %v", err)
	}
	if err := m.Next(); err != nil {
		t.Fatalf("Next: %v", err)
	}
	m.Quit()

	rc.mu.Lock()
	defer rc.mu.Unlock()
	if got := rc.claimed; len(got) != 2 || got[0] != "mp3" || got[1] != "wav" {
		t.Fatalf("claimed = %v, want [mp3 wav]", got)
	}
	if got := rc.released; len(got) != 2 || got[0] != "mp3" || got[1] != "wav" {
		t.Fatalf("released = %v, want [mp3 wav]", got)
	}
}

func TestManagerPauseResume(t *testing.T) {
	src := playlist.NewStaticListSource([]string{"a.mp3"}, nil)
	it := playlist.NewIterator(src, playlist.LoopNone)
	m := New(it, func(string) GraphFactory { return fakeFactory })
	_ = m.Play()

	m.PauseResume()
	if m.Status() != StatusPaused {
		t.Fatalf("status = %v, want Paused", m.Status())
	}
	m.PauseResume()
	if m.Status() != StatusPlaying {
		t.Fatalf("status = %v, want Playing", m.Status())
	}
	m.Quit()
	time.Sleep(10 * time.Millisecond)
}

func TestManagerVolumeAndMute(t *testing.T) {
	src := playlist.NewStaticListSource([]string{"a.mp3"}, nil)
	it := playlist.NewIterator(src, playlist.LoopNone)
	m := New(it, func(string) GraphFactory { return fakeFactory })
	_ = m.Play()

	m.SetVolume(5)
	m.SetVolume(-2)
	if m.Volume() != 3 {
		t.Fatalf("Volume = %d, want 3", m.Volume())
	}
	m.SetMute(true)
	if !m.Muted() {
		t.Fatalf("expected Muted() true")
	}
	m.Quit()
}
