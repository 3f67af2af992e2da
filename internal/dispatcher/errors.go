package dispatcher

import "fmt"

// ConfigError reports an invalid action configuration. Nothing has run when
// it is returned.
type ConfigError struct {
	Action string
	Msg    string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s configuration: %s", e.Action, e.Msg)
}
