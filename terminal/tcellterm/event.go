package tcellterm

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/smiledash/terminal"
)

var keyMap = map[tcell.Key]terminal.Key{
	tcell.KeyEscape:     terminal.KeyEscape,
	tcell.KeyEnter:      terminal.KeyEnter,
	tcell.KeyTab:        terminal.KeyTab,
	tcell.KeyBacktab:    terminal.KeyBacktab,
	tcell.KeyBackspace:  terminal.KeyBackspace,
	tcell.KeyBackspace2: terminal.KeyBackspace,
	tcell.KeyDelete:     terminal.KeyDelete,
	tcell.KeyUp:         terminal.KeyUp,
	tcell.KeyDown:       terminal.KeyDown,
	tcell.KeyLeft:       terminal.KeyLeft,
	tcell.KeyRight:      terminal.KeyRight,
	tcell.KeyHome:       terminal.KeyHome,
	tcell.KeyEnd:        terminal.KeyEnd,
	tcell.KeyPgUp:       terminal.KeyPageUp,
	tcell.KeyPgDn:       terminal.KeyPageDown,
	tcell.KeyInsert:     terminal.KeyInsert,
	tcell.KeyCtrlC:      terminal.KeyCtrlC,
	tcell.KeyCtrlD:      terminal.KeyCtrlD,
	tcell.KeyCtrlL:      terminal.KeyCtrlL,
	tcell.KeyCtrlZ:      terminal.KeyCtrlZ,
}

// convertEvent maps a tcell event, false for events the dashboard has no use for
func convertEvent(ev tcell.Event) (terminal.Event, bool) {
	switch e := ev.(type) {
	case *tcell.EventKey:
		out := terminal.Event{Type: terminal.EventKey, Modifiers: convertMods(e.Modifiers())}
		if e.Key() == tcell.KeyRune {
			out.Key = terminal.KeyRune
			out.Rune = e.Rune()
			if out.Rune == ' ' {
				out.Key = terminal.KeySpace
			}
			return out, true
		}
		k, ok := keyMap[e.Key()]
		if !ok {
			return terminal.Event{}, false
		}
		out.Key = k
		return out, true

	case *tcell.EventResize:
		w, h := e.Size()
		return terminal.Event{Type: terminal.EventResize, Width: w, Height: h}, true

	case *tcell.EventError:
		return terminal.Event{Type: terminal.EventError, Err: e}, true
	}
	return terminal.Event{}, false
}

func convertMods(m tcell.ModMask) terminal.Modifier {
	var out terminal.Modifier
	if m&tcell.ModShift != 0 {
		out |= terminal.ModShift
	}
	if m&tcell.ModAlt != 0 {
		out |= terminal.ModAlt
	}
	if m&tcell.ModCtrl != 0 {
		out |= terminal.ModCtrl
	}
	return out
}
