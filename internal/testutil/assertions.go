package testutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// AssertLogged checks that a log line at level carries msg, so tests do not
// depend on attribute order.
func AssertLogged(t *testing.T, logs *SafeBuffer, level, msg string) {
	t.Helper()
	for _, line := range strings.Split(logs.String(), "\n") {
		if strings.Contains(line, "level="+level) && strings.Contains(line, msg) {
			return
		}
	}
	require.Failf(t, "log line not found", "no %s line containing %q in:\n%s", level, msg, logs.String())
}
