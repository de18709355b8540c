package playlist

import (
	"testing"

	"github.com/momentics/tizonia-go/api"
)

func TestIteratorAdvancesThroughList(t *testing.T) {
	src := NewStaticListSource([]string{"a.mp3", "b.mp3"}, nil)
	it := NewIterator(src, LoopNone)

	url, _, err := it.Next()
	if err != nil || url != "a.mp3" {
		t.Fatalf("Next() = %q, %v; want a.mp3, nil", url, err)
	}
	url, _, err = it.Next()
	if err != nil || url != "b.mp3" {
		t.Fatalf("Next() = %q, %v; want b.mp3, nil", url, err)
	}

	_, _, err = it.Next()
	apiErr, ok := err.(*api.Error)
	if !ok || apiErr.Code != api.ErrCodeEndOfList {
		t.Fatalf("expected EndOfList, got %v", err)
	}
}

func TestIteratorLoopTrackReplaysCurrent(t *testing.T) {
	src := NewStaticListSource([]string{"a.mp3"}, nil)
	it := NewIterator(src, LoopTrack)

	url1, _, _ := it.Next()
	url2, _, _ := it.Next()
	if url1 != url2 {
		t.Fatalf("LoopTrack should replay the same URL, got %q then %q", url1, url2)
	}
}

func TestIteratorLoopPlaylistRestarts(t *testing.T) {
	src := NewStaticListSource([]string{"a.mp3", "b.mp3"}, nil)
	it := NewIterator(src, LoopPlaylist)

	_, _, _ = it.Next() // a
	_, _, _ = it.Next() // b
	url, _, err := it.Next()
	if err != nil {
		t.Fatalf("LoopPlaylist should not surface EndOfList, got %v", err)
	}
	if url != "a.mp3" {
		t.Fatalf("LoopPlaylist restart = %q, want a.mp3", url)
	}
}

func TestIteratorPrevious(t *testing.T) {
	src := NewStaticListSource([]string{"a.mp3", "b.mp3"}, nil)
	it := NewIterator(src, LoopNone)
	_, _, _ = it.Next()
	_, _, _ = it.Next()

	url, _, err := it.Previous()
	if err != nil || url != "a.mp3" {
		t.Fatalf("Previous() = %q, %v; want a.mp3, nil", url, err)
	}
}
