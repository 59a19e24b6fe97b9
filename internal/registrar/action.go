package registrar

import "fmt"

// Action is one of the operations the registrar performs.
type Action string

// Supported actions.
const (
	ActionAdd      Action = "add"
	ActionRemove   Action = "remove"
	ActionUnexport Action = "unexport"
	ActionStatus   Action = "status"
)

// Actions lists every supported action in CLI order.
func Actions() []Action {
	return []Action{ActionAdd, ActionRemove, ActionUnexport, ActionStatus}
}

// ParseAction converts a command-line word into an Action.
func ParseAction(s string) (Action, error) {
	for _, a := range Actions() {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownAction, s)
}

// String implements fmt.Stringer.
func (a Action) String() string {
	return string(a)
}
