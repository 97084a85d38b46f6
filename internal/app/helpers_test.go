package app

import (
	"os"
	"testing"

	"github.com/specialistvlad/stashgraph/internal/testutil"
)

// SetupAppTest creates an App with debug logging captured in a buffer. The
// log is dumped when STASHGRAPH_TEST_LOGS=true.
func SetupAppTest(t *testing.T, cfg *Config) (app *App, out *testutil.SafeBuffer, logs *testutil.SafeBuffer) {
	t.Helper()

	out, logs = &testutil.SafeBuffer{}, &testutil.SafeBuffer{}
	cfg.LogLevel = "debug"
	app = NewApp(out, logs, cfg)

	t.Cleanup(func() {
		if os.Getenv("STASHGRAPH_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
		}
	})
	return app, out, logs
}
