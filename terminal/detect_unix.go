//go:build unix

package terminal

import (
	"os"
	"strings"

	"golang.org/x/sys/unix"
)

// trueColorHosts are environment variables set only by emulators with 24-bit color
var trueColorHosts = []string{
	"KITTY_WINDOW_ID",
	"ITERM_SESSION_ID",
	"WEZTERM_PANE",
	"ALACRITTY_WINDOW_ID",
	"KONSOLE_VERSION",
}

// DetectColorMode guesses color depth from COLORTERM, TERM and emulator markers
func DetectColorMode() ColorMode {
	switch os.Getenv("COLORTERM") {
	case "truecolor", "24bit":
		return ColorModeTrueColor
	}
	for _, name := range trueColorHosts {
		if os.Getenv(name) != "" {
			return ColorModeTrueColor
		}
	}
	t := os.Getenv("TERM")
	if strings.HasSuffix(t, "-direct") || strings.Contains(t, "truecolor") {
		return ColorModeTrueColor
	}
	return ColorMode256
}

// resetTerminalMode turns echo and canonical input back on through /dev/tty
// Used after a crash when the saved state is out of reach, errors are ignored
func resetTerminalMode() {
	tty, err := os.OpenFile("/dev/tty", os.O_RDWR, 0)
	if err != nil {
		return
	}
	defer tty.Close()

	fd := int(tty.Fd())
	tios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return
	}
	tios.Lflag |= unix.ECHO | unix.ICANON | unix.ISIG | unix.IEXTEN
	tios.Iflag |= unix.ICRNL
	tios.Oflag |= unix.OPOST
	_ = unix.IoctlSetTermios(fd, unix.TCSETS, tios)
}
