package terminal

// InitError reports that the terminal could not be put into raw mode
type InitError struct {
	Err error
}

func (e *InitError) Error() string {
	return "terminal init: " + e.Err.Error()
}

func (e *InitError) Unwrap() error {
	return e.Err
}

// RunSession holds t in raw mode and the alternate screen for the duration of fn
// Fini runs exactly once on every path out of fn: return, error or panic
// A panic is re-raised after the terminal has been restored
func RunSession(t Terminal, fn func(Terminal) error) error {
	if err := t.Init(); err != nil {
		return &InitError{Err: err}
	}
	defer t.Fini()

	return fn(t)
}
