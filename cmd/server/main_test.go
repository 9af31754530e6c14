package main

import (
	"strings"
	"testing"
)

// Smoke test to ensure main honors SKIP_SERVER_RUN and does not block test runs.
func TestMainSkipsWhenEnvSet(t *testing.T) {
	t.Setenv("SKIP_SERVER_RUN", "1")
	main()
}

func TestRunFailsOnBadEventLog(t *testing.T) {
	t.Setenv("EVENTLOG_BACKEND", "tape")
	t.Setenv("METRICS_ENABLED", "false")
	err := run()
	if err == nil || !strings.Contains(err.Error(), "tape") {
		t.Fatalf("expected unknown backend error, got %v", err)
	}
}
