// File: playlist/iterator.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package playlist

import (
	"sync"

	"github.com/momentics/tizonia-go/api"
)

// LoopMode controls what Iterator does once its TrackSource reports
// end-of-list.
type LoopMode int

const (
	LoopNone LoopMode = iota
	LoopTrack
	LoopPlaylist
)

// Iterator produces an ordered stream of URLs with skip/previous/loop
// semantics over one TrackSource. Finite or infinite, restartable from the
// beginning but not arbitrarily seekable (spec §3).
type Iterator struct {
	mu     sync.Mutex
	source TrackSource
	loop   LoopMode
	last   string
	lastMeta Metadata
}

// NewIterator wraps a TrackSource with loop/skip semantics.
func NewIterator(source TrackSource, loop LoopMode) *Iterator {
	return &Iterator{source: source, loop: loop}
}

func (it *Iterator) SetLoop(mode LoopMode) {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.loop = mode
}

// Next advances the iterator. On LoopTrack, it replays the last URL rather
// than consulting the source. On LoopPlaylist, an EndOfList from the
// underlying source is swallowed by restarting it.
func (it *Iterator) Next() (string, Metadata, error) {
	it.mu.Lock()
	defer it.mu.Unlock()

	if it.loop == LoopTrack && it.last != "" {
		return it.last, it.lastMeta, nil
	}

	url, meta, err := it.source.Next()
	if err == nil {
		it.last, it.lastMeta = url, meta
		return url, meta, nil
	}

	apiErr, ok := err.(*api.Error)
	if !ok || apiErr.Code != api.ErrCodeEndOfList || it.loop != LoopPlaylist {
		return "", Metadata{}, err
	}

	// LoopPlaylist: restart from the beginning by walking Previous until
	// it too reports exhaustion. The source then sits on its first track,
	// which is the last track Previous returned (or the last track played,
	// when the list holds a single track).
	url, meta = it.last, it.lastMeta
	for {
		purl, pmeta, perr := it.source.Previous()
		if perr != nil {
			break
		}
		url, meta = purl, pmeta
	}
	if url == "" {
		return "", Metadata{}, err
	}
	it.last, it.lastMeta = url, meta
	return url, meta, nil
}

// Previous steps back one track. Not arbitrarily seekable: only one step
// at a time, per spec §3.
func (it *Iterator) Previous() (string, Metadata, error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	url, meta, err := it.source.Previous()
	if err != nil {
		return "", Metadata{}, err
	}
	it.last, it.lastMeta = url, meta
	return url, meta, nil
}

// Current returns the most recently produced URL and metadata, used for
// MPRIS metadata surfacing without re-advancing the iterator.
func (it *Iterator) Current() (string, Metadata) {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.last, it.lastMeta
}
