package cache

import "fmt"

// Mode is the cache behavior requested for one call.
type Mode int

const (
	// ModeNone evaluates without reading or writing the cache.
	ModeNone Mode = iota
	// ModePopulate records every computed value.
	ModePopulate
	// ModeConsume reads previously recorded values and records nothing.
	ModeConsume
)

func (m Mode) String() string {
	switch m {
	case ModeNone:
		return "none"
	case ModePopulate:
		return "populate"
	case ModeConsume:
		return "consume"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// State is the lifecycle state of a Cache.
type State int

const (
	StateDisabled State = iota
	StatePopulating
	StatePopulated
	StateConsuming
)

func (s State) String() string {
	switch s {
	case StateDisabled:
		return "DISABLED"
	case StatePopulating:
		return "POPULATING"
	case StatePopulated:
		return "POPULATED"
	case StateConsuming:
		return "CONSUMING"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// StateError is returned when a caller violates the cache state machine. The
// cache is left in the state it had before the offending request.
type StateError struct {
	State State
	Msg   string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cache state error (%s): %s", e.State, e.Msg)
}

// ModeFromFlags maps the cache and use_cache flags of an inference call to a
// Mode. Setting both is an error.
func ModeFromFlags(cache, useCache bool) (Mode, error) {
	switch {
	case cache && useCache:
		return ModeNone, &StateError{Msg: "cache and use_cache were both set."}
	case cache:
		return ModePopulate, nil
	case useCache:
		return ModeConsume, nil
	default:
		return ModeNone, nil
	}
}
