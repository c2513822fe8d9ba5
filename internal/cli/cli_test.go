package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateEnv keeps the host's relay settings out of the test.
func isolateEnv(t *testing.T) {
	t.Helper()
	t.Setenv("IRCRELAY_HOME", t.TempDir())
	for _, k := range []string{
		"IRC_USERNAME", "IRC_PASSWORD", "DISCORD_TOKEN",
		"IRCRELAY_IRC_SERVER", "IRCRELAY_IRC_CHANNEL",
		"IRCRELAY_QUEUE_CAPACITY", "IRCRELAY_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	t.Setenv("TARGET_CHANNELS", "")
	os.Unsetenv("TARGET_CHANNELS")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersionCmd(t *testing.T) {
	isolateEnv(t)
	out, err := execute(t, "version", "--log-level", "silent")
	require.NoError(t, err)
	assert.Contains(t, out, "ircrelay dev")
}

func TestStatusCmd_HidesSecrets(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
source:
  username: relaybot
  password: hunter2
destination:
  token: very-secret-token
  channels: ["111111111111111111", "222222222222222222"]
relay:
  queueCapacity: 10
hooks:
  sendFailed:
    - command: "true"
`), 0o600))

	out, err := execute(t, "status", "--config", path, "--log-level", "silent")
	require.NoError(t, err)

	assert.Contains(t, out, "server=irc.ppy.sh:6667 channel=#vietnamese nick=relaybot password=set")
	assert.Contains(t, out, "channels=111111111111111111,222222222222222222 token=set")
	assert.Contains(t, out, "Queue:   10 (drop oldest)")
	assert.Contains(t, out, "Hooks:   send_failed=1")
	assert.NotContains(t, out, "hunter2")
	assert.NotContains(t, out, "very-secret-token")
	assert.NotContains(t, out, "Validation issues")
}

func TestStatusCmd_ReportsIssues(t *testing.T) {
	isolateEnv(t)
	out, err := execute(t, "status", "--config", filepath.Join(t.TempDir(), "none.yaml"), "--log-level", "silent")
	require.NoError(t, err)

	assert.Contains(t, out, "channels=(none) token=unset")
	assert.Contains(t, out, "Queue:   unbounded")
	assert.Contains(t, out, "source.username")
	assert.Contains(t, out, "destination.token")
}

func TestStatusCmd_LoadsEnvFile(t *testing.T) {
	isolateEnv(t)
	os.Unsetenv("IRC_USERNAME")
	envPath := filepath.Join(t.TempDir(), "relay.env")
	require.NoError(t, os.WriteFile(envPath, []byte("IRC_USERNAME=fromdotenv\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("IRC_USERNAME") })

	out, err := execute(t, "status",
		"--config", filepath.Join(t.TempDir(), "none.yaml"),
		"--env-file", envPath,
		"--log-level", "silent")
	require.NoError(t, err)
	assert.Contains(t, out, "nick=fromdotenv")
}

func TestRunCmd_RejectsInvalidConfig(t *testing.T) {
	isolateEnv(t)
	_, err := execute(t, "run", "--config", filepath.Join(t.TempDir(), "none.yaml"), "--log-level", "silent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config validation failed")
}

func TestConfigInitThenShow(t *testing.T) {
	isolateEnv(t)
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := execute(t, "config", "init", "--config", path, "--log-level", "silent")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+path)

	_, err = execute(t, "config", "init", "--config", path, "--log-level", "silent")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	t.Setenv("DISCORD_TOKEN", "real-token")
	out, err = execute(t, "config", "show", "--config", path, "--log-level", "silent")
	require.NoError(t, err)
	assert.Contains(t, out, "server: irc.ppy.sh")
	assert.Contains(t, out, "#vietnamese")
	assert.Contains(t, out, redacted)
	assert.NotContains(t, out, "real-token")
}

func TestConfigPath(t *testing.T) {
	isolateEnv(t)
	out, err := execute(t, "config", "path", "--config", "/tmp/relay.yaml", "--log-level", "silent")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/relay.yaml\n", out)
}
