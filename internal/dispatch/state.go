package dispatch

// State is where the dispatcher is in resolving one command line.
type State int

const (
	StateNoCommand State = iota
	StateCommandNamed
	StateDefaultsApplied
	StateValuesParsed
	StateDone
	StateError
	StateHelp
)

func (s State) String() string {
	switch s {
	case StateNoCommand:
		return "no-command"
	case StateCommandNamed:
		return "command-named"
	case StateDefaultsApplied:
		return "defaults-applied"
	case StateValuesParsed:
		return "values-parsed"
	case StateDone:
		return "done"
	case StateError:
		return "error"
	case StateHelp:
		return "help"
	}
	return "unknown"
}
