package link

// State is a position in the link lifecycle of one session
type State string

const (
	StateNoLink    State = "no_link"
	StateInitiated State = "link_initiated"
	StateComplete  State = "link_complete"
	StateFailed    State = "link_failed"
)

// ParseState maps a stored value back to a State. Anything unknown,
// including the empty string, is StateNoLink.
func ParseState(s string) State {
	switch State(s) {
	case StateInitiated, StateComplete, StateFailed:
		return State(s)
	default:
		return StateNoLink
	}
}

// Terminal reports whether no further transition happens without a new
// Initiate.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateFailed
}
