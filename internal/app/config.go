package app

import (
	"errors"
	"fmt"
)

// Actions accepted by Config.Action. ActionAuto runs train when the pipeline
// declares a train block and infer otherwise.
const (
	ActionAuto  = "auto"
	ActionInfer = "infer"
	ActionTrain = "train"
)

// Config holds all the necessary configuration for an App instance to run.
type Config struct {
	PipelinePath string // hcl file or directory
	Action       string

	LogFormat       string
	LogLevel        string
	HealthcheckPort int
}

func NewConfig(cfg Config) (*Config, error) {
	if cfg.PipelinePath == "" {
		return nil, errors.New("PipelinePath is a required configuration field and cannot be empty")
	}
	switch cfg.Action {
	case "":
		cfg.Action = ActionAuto
	case ActionAuto, ActionInfer, ActionTrain:
	default:
		return nil, fmt.Errorf("unknown action '%s': must be '%s', '%s' or '%s'", cfg.Action, ActionAuto, ActionInfer, ActionTrain)
	}
	if cfg.HealthcheckPort < 0 {
		return nil, fmt.Errorf("healthcheck port cannot be negative, got %d", cfg.HealthcheckPort)
	}
	return &cfg, nil
}
