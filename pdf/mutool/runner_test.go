package mutool

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestExecRunner(t *testing.T) {
	requireShell(t)
	r := ExecRunner{Timeout: 5 * time.Second}

	out, err := r.Run(context.Background(), "sh", "-c", "echo out; echo warn >&2")
	require.NoError(t, err)
	assert.Equal(t, "out\n", string(out), "stderr is not mixed into output")

	_, err = r.Run(context.Background(), "sh", "-c", "echo broken pdf >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken pdf")
}

func TestExecRunner_Timeout(t *testing.T) {
	requireShell(t)
	r := ExecRunner{Timeout: 50 * time.Millisecond}

	_, err := r.Run(context.Background(), "sh", "-c", "sleep 5")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestCheckAvailable(t *testing.T) {
	assert.Error(t, New(Config{Path: "definitely-not-mutool-xyz"}).CheckAvailable())
}
