package process

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startSleeper(t *testing.T) *exec.Cmd {
	t.Helper()
	cmd := exec.Command("sleep", "60")
	require.NoError(t, cmd.Start())
	t.Cleanup(func() {
		_ = cmd.Process.Kill()
		_, _ = cmd.Process.Wait()
	})
	return cmd
}

func TestRegistryRegisterAndKill(t *testing.T) {
	r := NewRegistry()
	cmd := startSleeper(t)

	assert.True(t, r.Register(9, cmd.Process))
	assert.True(t, r.IsRunning(9))

	require.NoError(t, r.Kill(9))
	assert.False(t, r.IsRunning(9))
}

func TestRegistryRejectsDuplicate(t *testing.T) {
	r := NewRegistry()
	cmd := startSleeper(t)

	assert.True(t, r.Register(9, cmd.Process))
	assert.False(t, r.Register(9, cmd.Process))
}

func TestRegistryUnregister(t *testing.T) {
	r := NewRegistry()
	cmd := startSleeper(t)

	r.Register(9, cmd.Process)
	r.Unregister(9)
	assert.False(t, r.IsRunning(9))
}

func TestRegistryKillUnknownJobIsNoop(t *testing.T) {
	r := NewRegistry()
	assert.NoError(t, r.Kill(404))
}

func TestRegistryKillAlreadyExitedProcess(t *testing.T) {
	r := NewRegistry()
	cmd := exec.Command("true")
	require.NoError(t, cmd.Start())
	require.NoError(t, cmd.Wait())

	r.Register(9, cmd.Process)
	assert.NoError(t, r.Kill(9))
}
