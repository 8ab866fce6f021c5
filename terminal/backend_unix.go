//go:build unix

package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// pollMillis bounds how long Read blocks before re-checking the stop channel
const pollMillis = 50

// ttyBackend drives the controlling terminal through stdin and stdout
type ttyBackend struct {
	in, out *os.File
	saved   *term.State
	readBuf [512]byte

	winch    chan os.Signal
	winchEnd sync.WaitGroup
}

func newBackend() Backend {
	return &ttyBackend{in: os.Stdin, out: os.Stdout}
}

func (b *ttyBackend) Init() error {
	for _, f := range []*os.File{b.in, b.out} {
		if !term.IsTerminal(int(f.Fd())) {
			return fmt.Errorf("%s is not a terminal", f.Name())
		}
	}
	saved, err := term.MakeRaw(int(b.in.Fd()))
	if err != nil {
		return fmt.Errorf("enter raw mode: %w", err)
	}
	b.saved = saved
	return nil
}

func (b *ttyBackend) Fini() {
	if b.winch != nil {
		signal.Stop(b.winch)
		close(b.winch)
		b.winchEnd.Wait()
		b.winch = nil
	}
	if b.saved != nil {
		_ = term.Restore(int(b.in.Fd()), b.saved)
		b.saved = nil
	}
}

// Size falls back to 80x24 when the ioctl fails
func (b *ttyBackend) Size() (int, int) {
	ws, err := unix.IoctlGetWinsize(int(b.out.Fd()), unix.TIOCGWINSZ)
	if err != nil || ws.Col == 0 || ws.Row == 0 {
		return 80, 24
	}
	return int(ws.Col), int(ws.Row)
}

func (b *ttyBackend) Write(p []byte) error {
	_, err := b.out.Write(p)
	return err
}

// Read returns nil data on poll timeout and on stop
func (b *ttyBackend) Read(stopCh <-chan struct{}) ([]byte, error) {
	fd := int(b.in.Fd())
	for {
		select {
		case <-stopCh:
			return nil, nil
		default:
		}

		fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, pollMillis)
		switch {
		case errors.Is(err, unix.EINTR):
			continue
		case err != nil:
			return nil, fmt.Errorf("poll stdin: %w", err)
		case n == 0:
			return nil, nil
		}

		rn, err := unix.Read(fd, b.readBuf[:])
		switch {
		case errors.Is(err, unix.EINTR), errors.Is(err, unix.EAGAIN):
			continue
		case err != nil:
			return nil, fmt.Errorf("read stdin: %w", err)
		case rn == 0:
			return nil, fmt.Errorf("read stdin: %w", io.EOF)
		}
		return append([]byte(nil), b.readBuf[:rn]...), nil
	}
}

// SetResizeHandler calls handler with the new size on every SIGWINCH until Fini
func (b *ttyBackend) SetResizeHandler(handler func(width, height int)) {
	b.winch = make(chan os.Signal, 1)
	signal.Notify(b.winch, syscall.SIGWINCH)

	b.winchEnd.Add(1)
	go func(ch <-chan os.Signal) {
		defer b.winchEnd.Done()
		for range ch {
			handler(b.Size())
		}
	}(b.winch)
}
