package logger

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// capture redirects output for the duration of a test.
func capture(t *testing.T, verboseMode bool) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(verboseMode)
	t.Cleanup(func() {
		SetVerbose(false)
		SetOutput(os.Stderr)
	})
	return &buf
}

func TestSetVerbose(t *testing.T) {
	capture(t, false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestLevels(t *testing.T) {
	tests := []struct {
		name    string
		log     func()
		verbose bool
		want    string
	}{
		{"debug verbose", func() { Debug("query %q", "a AND b") }, true, "[DEBUG] query \"a AND b\"\n"},
		{"debug quiet", func() { Debug("hidden") }, false, ""},
		{"info verbose", func() { Info("matched %d", 3) }, true, "[INFO] matched 3\n"},
		{"info quiet", func() { Info("hidden") }, false, ""},
		{"warn verbose", func() { Warn("fallback") }, true, "[WARN] fallback\n"},
		{"warn quiet", func() { Warn("hidden") }, false, ""},
		{"error verbose", func() { Error("sync %s failed", "20240101") }, true, "[ERROR] sync 20240101 failed\n"},
		{"error quiet", func() { Error("always shown") }, false, "[ERROR] always shown\n"},
		{"section verbose", func() { Section("Boolean Search") }, true, "\n=== Boolean Search ===\n"},
		{"section quiet", func() { Section("hidden") }, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := capture(t, tt.verbose)
			tt.log()
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestConcurrentAccess(t *testing.T) {
	capture(t, false)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			SetVerbose(true)
			Debug("concurrent %d", n)
			Error("concurrent %d", n)
			IsVerbose()
			SetVerbose(false)
		}(i)
	}
	wg.Wait()
}
