package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/specialistvlad/nmgraph/internal/app"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		want     *app.Config
		wantExit bool
		wantCode int
		wantMsg  string
	}{
		{
			name: "positional path with defaults",
			args: []string{"pipeline.hcl"},
			want: &app.Config{PipelinePath: "pipeline.hcl", Action: app.ActionAuto, LogFormat: "text", LogLevel: "info"},
		},
		{
			name: "flags",
			args: []string{"-p", "dir", "-action", "TRAIN", "-log-format", "json", "-log-level", "debug", "-healthcheck-port", "8080"},
			want: &app.Config{PipelinePath: "dir", Action: app.ActionTrain, LogFormat: "json", LogLevel: "debug", HealthcheckPort: 8080},
		},
		{
			name: "long flag wins over shorthand",
			args: []string{"-pipeline", "a.hcl", "-p", "b.hcl"},
			want: &app.Config{PipelinePath: "a.hcl", Action: app.ActionAuto, LogFormat: "text", LogLevel: "info"},
		},
		{name: "help", args: []string{"-h"}, wantExit: true},
		{name: "no path", args: nil, wantExit: true},
		{name: "unknown flag", args: []string{"-nope"}, wantCode: 2, wantMsg: "flag provided but not defined"},
		{name: "bad log format", args: []string{"-log-format", "xml", "p.hcl"}, wantCode: 2, wantMsg: "invalid log-format"},
		{name: "bad log level", args: []string{"-log-level", "trace", "p.hcl"}, wantCode: 2, wantMsg: "invalid log-level"},
		{name: "bad action", args: []string{"-action", "serve", "p.hcl"}, wantCode: 2, wantMsg: "unknown action 'serve'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := &bytes.Buffer{}
			cfg, exit, err := Parse(tt.args, out)
			if tt.wantCode != 0 {
				var exitErr *ExitError
				require.True(t, errors.As(err, &exitErr))
				assert.Equal(t, tt.wantCode, exitErr.Code)
				assert.Contains(t, exitErr.Message, tt.wantMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantExit, exit)
			if tt.wantExit {
				assert.Contains(t, out.String(), "Usage:")
				return
			}
			assert.Equal(t, tt.want, cfg)
		})
	}
}
