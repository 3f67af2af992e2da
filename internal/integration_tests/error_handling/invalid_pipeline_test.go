package integration_tests

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/nmgraph/internal/app"
	"github.com/specialistvlad/nmgraph/internal/dispatcher"
	"github.com/specialistvlad/nmgraph/internal/hcl_adapter"
	"github.com/specialistvlad/nmgraph/internal/localsession"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_PipelineErrors(t *testing.T) {
	testCases := []struct {
		name    string
		src     string
		action  string
		wantErr string
	}{
		{
			name:    "no actions",
			src:     "module \"zeros\" \"d\" { size = 2 }\ncall \"z\" {\n  module = \"d\"\n}",
			wantErr: "neither a train nor an infer block",
		},
		{
			name:    "train requested without train block",
			src:     "module \"zeros\" \"d\" { size = 2 }\ncall \"z\" {\n  module = \"d\"\n}\ninfer {\n  targets = [call.z.dl_out]\n}",
			action:  app.ActionTrain,
			wantErr: "declares no train block",
		},
		{
			name:    "unknown optimizer",
			src:     "module \"zeros\" \"d\" { size = 2 }\ncall \"z\" {\n  module = \"d\"\n}\ntrain {\n  losses     = [call.z.dl_out]\n  num_epochs = 1\n  optimizer  = \"adam\"\n}",
			wantErr: "unknown optimizer",
		},
		{
			name:    "mutually exclusive stop conditions",
			src:     "module \"zeros\" \"d\" { size = 2 }\ncall \"z\" {\n  module = \"d\"\n}\ntrain {\n  losses     = [call.z.dl_out]\n  num_epochs = 1\n  max_steps  = 2\n}",
			wantErr: "mutually exclusive",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			testApp, _ := app.SetupAppTest(t, app.Config{Action: tc.action}, tc.src)
			err := testApp.Run(context.Background())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestRun_TrainConfigErrorIsTyped(t *testing.T) {
	src := "module \"zeros\" \"d\" { size = 2 }\ncall \"z\" {\n  module = \"d\"\n}\ntrain {\n  losses = [call.z.dl_out]\n}"
	testApp, _ := app.SetupAppTest(t, app.Config{}, src)

	err := testApp.Run(context.Background())
	var cfgErr *dispatcher.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Error(), "one of num_epochs or max_steps must be positive")
}

func TestNewApp_RejectsMalformedPipeline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.hcl")
	require.NoError(t, os.WriteFile(path, []byte(`module "zeros" {`), 0o644))

	cfg, err := app.NewConfig(app.Config{PipelinePath: path})
	require.NoError(t, err)
	testApp, err := app.NewApp(io.Discard, cfg, hcl_adapter.NewLoader(), &localsession.SessionFactory{})
	if err == nil {
		err = testApp.Run(context.Background())
	}
	require.Error(t, err)
}
