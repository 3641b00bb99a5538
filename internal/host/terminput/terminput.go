// Package terminput reads single keystrokes from a raw-mode terminal for
// the goba-term frontend, using pkg/term for the raw-mode switch and
// golang.org/x/sys/unix for the TIOCGWINSZ window-size query.
package terminput

import (
	"bufio"
	"os"

	"github.com/pkg/term"
	"golang.org/x/sys/unix"
)

// Reader reads raw keystrokes from the controlling terminal (/dev/tty),
// restoring cooked mode on Close.
type Reader struct {
	t  *term.Term
	br *bufio.Reader
}

// Open opens /dev/tty and puts it into raw, unbuffered mode.
func Open() (*Reader, error) {
	t, err := term.Open("/dev/tty")
	if err != nil {
		return nil, err
	}
	if err := term.RawMode(t); err != nil {
		t.Close()
		return nil, err
	}
	return &Reader{t: t, br: bufio.NewReader(t)}, nil
}

// ReadByte blocks for the next raw byte typed.
func (r *Reader) ReadByte() (byte, error) { return r.br.ReadByte() }

// Close restores the terminal's original mode.
func (r *Reader) Close() error {
	r.t.Restore()
	return r.t.Close()
}

// WindowSize reports the current terminal dimensions, used by goba-term
// to decide how much of the framebuffer it can render as block glyphs.
func WindowSize() (cols, rows int, err error) {
	ws, err := unix.IoctlGetWinsize(int(os.Stdout.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, err
	}
	return int(ws.Col), int(ws.Row), nil
}
