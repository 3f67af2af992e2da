package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/nmgraph/internal/hcl_adapter"
	"github.com/specialistvlad/nmgraph/internal/localsession"
	"github.com/specialistvlad/nmgraph/internal/testutil"
	"github.com/stretchr/testify/require"
)

// SetupAppTest writes src as a pipeline file and creates an app for system
// testing with the built-in modules and a local session factory. The log is
// dumped at cleanup when NMG_TEST_LOGS=true.
func SetupAppTest(t *testing.T, cfg Config, src string) (*App, *testutil.SafeBuffer) {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "pipeline.hcl")
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))

	cfg.PipelinePath = path
	cfg.LogLevel = "debug"
	appConfig, err := NewConfig(cfg)
	require.NoError(t, err)

	logBuffer := &testutil.SafeBuffer{}
	testApp, err := NewApp(logBuffer, appConfig, hcl_adapter.NewLoader(), &localsession.SessionFactory{})
	require.NoError(t, err)

	t.Cleanup(func() {
		if os.Getenv("NMG_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})
	return testApp, logBuffer
}
