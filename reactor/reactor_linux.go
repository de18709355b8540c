//go:build linux
// +build linux

// File: reactor/reactor_linux.go
// Author: momentics <momentics@gmail.com>
//
// Linux epoll(7)-based reactor implementation and factory (spec §5
// "Suspension points"). sink.FileSink exposes its descriptor through
// Writable(), but no package in this module calls New or registers a sink
// descriptor, so no component worker is nudged by this reactor.

package reactor

import (
	"unsafe"

	"golang.org/x/sys/unix"

	"github.com/momentics/tizonia-go/api"
)

// linuxReactor is an epoll-based event reactor.
type linuxReactor struct {
	epfd int
}

// New constructs a new platform-specific Reactor for Linux.
func New() (api.Reactor, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, err
	}
	return &linuxReactor{epfd: epfd}, nil
}

// Register adds a file descriptor to epoll, watching for writability.
func (r *linuxReactor) Register(fd uintptr, udata uintptr) error {
	event := &unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLOUT | unix.EPOLLET,
		Fd:     int32(fd),
	}
	*(*uintptr)(unsafe.Pointer(&event.Pad)) = udata
	return unix.EpollCtl(r.epfd, unix.EPOLL_CTL_ADD, int(fd), event)
}

// Wait blocks until at least one registered descriptor is ready.
func (r *linuxReactor) Wait(events []api.Event) (int, error) {
	rawEvents := make([]unix.EpollEvent, len(events))
	n, err := unix.EpollWait(r.epfd, rawEvents, -1)
	if err != nil {
		return 0, err
	}
	for i := 0; i < n; i++ {
		events[i] = api.Event{
			Fd:       uintptr(rawEvents[i].Fd),
			UserData: *(*uintptr)(unsafe.Pointer(&rawEvents[i].Pad)),
		}
	}
	return n, nil
}

// Close closes the epoll instance.
func (r *linuxReactor) Close() error {
	return unix.Close(r.epfd)
}
