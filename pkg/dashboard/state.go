package dashboard

import (
	"fmt"
	"strings"
)

// LoadingState is the lifecycle of one feed. A feed starts Idle, moves to
// Loading when a fetch begins and settles in Success or Error. A refresh
// goes back to Loading, never to Idle.
type LoadingState int

const (
	Idle LoadingState = iota
	Loading
	Success
	Error
)

var stateNames = [...]string{"idle", "loading", "success", "error"}

func (s LoadingState) String() string {
	if s < Idle || s > Error {
		return fmt.Sprintf("LoadingState(%d)", int(s))
	}
	return stateNames[s]
}

// Settled reports whether the feed holds a terminal result.
func (s LoadingState) Settled() bool {
	return s == Success || s == Error
}

func (s LoadingState) MarshalText() ([]byte, error) {
	if s < Idle || s > Error {
		return nil, fmt.Errorf("dashboard: invalid loading state %d", int(s))
	}
	return []byte(stateNames[s]), nil
}

func (s *LoadingState) UnmarshalText(text []byte) error {
	name := strings.ToLower(strings.TrimSpace(string(text)))
	for i, n := range stateNames {
		if n == name {
			*s = LoadingState(i)
			return nil
		}
	}
	return fmt.Errorf("dashboard: unknown loading state %q", string(text))
}
