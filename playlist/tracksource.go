// File: playlist/tracksource.go
// Package playlist implements the playlist iterator and TrackSource trait
// (spec §3 "Playlist iterator", §9 supplemented feature).
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// TrackSource re-expresses the original's Python-embedded streaming-service
// proxies (boost::python wrapping each service's native client) as a plain
// Go interface: concrete implementations speak each service's HTTP/API
// directly, no embedded interpreter (design note §9).

package playlist

import (
	"sync"
	"time"

	"github.com/momentics/tizonia-go/api"
)

// Metadata describes one track, surfaced through the MPRIS/CLI metadata map
// (spec §6 "artist/title/duration/year/permalink/license").
type Metadata struct {
	Artist    string
	Title     string
	Duration  time.Duration
	Year      int
	Permalink string
	License   string
}

// TrackSource produces URLs with metadata, one content source / protocol
// family at a time (a file list, a streaming-service queue, a radio
// station's next-up API, ...).
type TrackSource interface {
	// Next returns the next URL, or an *api.Error with ErrCodeEndOfList
	// once the source is exhausted.
	Next() (url string, meta Metadata, err error)
	// Previous returns the URL before the current position, or
	// ErrCodeEndOfList at the start of a finite, non-looping source.
	Previous() (url string, meta Metadata, err error)
}

// StaticListSource is a TrackSource over a fixed, in-memory list of URLs —
// the file-playlist case, and the simplest fake for tests.
type StaticListSource struct {
	mu    sync.Mutex
	items []staticItem
	pos   int
}

type staticItem struct {
	url  string
	meta Metadata
}

// NewStaticListSource builds a source over url/metadata pairs in order.
func NewStaticListSource(urls []string, metas []Metadata) *StaticListSource {
	items := make([]staticItem, len(urls))
	for i, u := range urls {
		m := Metadata{}
		if i < len(metas) {
			m = metas[i]
		}
		items[i] = staticItem{url: u, meta: m}
	}
	return &StaticListSource{items: items, pos: -1}
}

func (s *StaticListSource) Next() (string, Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos+1 >= len(s.items) {
		return "", Metadata{}, api.NewError(api.ErrCodeEndOfList, "no more tracks")
	}
	s.pos++
	it := s.items[s.pos]
	return it.url, it.meta, nil
}

func (s *StaticListSource) Previous() (string, Metadata, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos <= 0 {
		return "", Metadata{}, api.NewError(api.ErrCodeEndOfList, "already at the first track")
	}
	s.pos--
	it := s.items[s.pos]
	return it.url, it.meta, nil
}
