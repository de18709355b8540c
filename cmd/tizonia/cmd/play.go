// File: cmd/tizonia/cmd/play.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Grounded on the teacher's cli/cmd/get.go shape (cobra.Command.RunE
// building one subsystem, streaming status to stdout) generalized from
// "fetch resources" to "drive a playback manager from stdin keystrokes" per
// spec §6's CLI control surface.

package cmd

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/momentics/tizonia-go/graph"
	"github.com/momentics/tizonia-go/manager"
	"github.com/momentics/tizonia-go/playlist"
	"github.com/momentics/tizonia-go/sink"
)

var loopFlag string

func newPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play [tracks...]",
		Short: "play one or more local audio files",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runPlay,
	}
	cmd.Flags().StringVar(&loopFlag, "loop", "none", "loop mode: none|track|playlist")
	return cmd
}

func loopModeFromFlag(s string) playlist.LoopMode {
	switch s {
	case "track":
		return playlist.LoopTrack
	case "playlist":
		return playlist.LoopPlaylist
	default:
		return playlist.LoopNone
	}
}

func runPlay(cmd *cobra.Command, args []string) error {
	colorize := isatty.IsTerminal(os.Stdout.Fd())
	ok := statusPrinter(colorize, color.FgGreen)
	info := statusPrinter(colorize, color.FgCyan)

	source := playlist.NewStaticListSource(args, nil)
	iterator := playlist.NewIterator(source, loopModeFromFlag(loopFlag))

	selector := func(url string) manager.GraphFactory {
		return func(url string) (*graph.Ops, *graph.FSM, error) {
			return graph.BuildFileGraph(url, sink.NewMemorySink())
		}
	}

	m := manager.New(iterator, selector)
	if err := m.Play(); err != nil {
		return err
	}
	ok("playing %s", args[0])

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	info("commands: p=pause n=next b=previous s=stop +/-=volume m=mute q=quit")

	for {
		select {
		case <-sigc:
			m.Quit()
			return nil
		case line, open := <-lines:
			if !open {
				m.Quit()
				return nil
			}
			if quit := handleKeystroke(m, strings.TrimSpace(line), info); quit {
				return nil
			}
		}
	}
}

func handleKeystroke(m *manager.Manager, line string, info func(string, ...any)) bool {
	switch {
	case line == "p":
		m.PauseResume()
		info("status: %s", m.Status())
	case line == "n":
		m.Next()
	case line == "b":
		m.Previous()
	case line == "s":
		m.Stop()
	case line == "m":
		m.SetMute(!m.Muted())
	case line == "q":
		m.Quit()
		return true
	case strings.HasPrefix(line, "seek "):
		if offset, err := strconv.ParseInt(strings.TrimPrefix(line, "seek "), 10, 64); err == nil {
			m.Seek(offset)
		}
	case line == "+":
		m.SetVolume(5)
	case line == "-":
		m.SetVolume(-5)
	default:
		info("unrecognized command: %q", line)
	}
	return false
}

func statusPrinter(colorize bool, attr color.Attribute) func(string, ...any) {
	c := color.New(attr)
	return func(format string, args ...any) {
		msg := fmt.Sprintf(format, args...)
		if colorize {
			c.Fprintln(stdout, msg)
			return
		}
		fmt.Fprintln(stdout, msg)
	}
}
