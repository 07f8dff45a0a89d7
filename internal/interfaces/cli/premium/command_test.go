package premium

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/castpass/castpass/internal/infrastructure/auth"
)

const wallet = "0x8ba1f109551bd432803012645ac136ddd64dba72"

func setEnv(t *testing.T) {
	t.Setenv("CASTPASS_DATABASE_DRIVER", "memory")
	t.Setenv("CASTPASS_LOGGER_OUTPUT_PATH", "stderr")
	t.Setenv("CASTPASS_PAYMENT_RECEIVING_ADDRESS", "0x9999999999999999999999999999999999999999")
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--config", ""))
	err := cmd.Execute()
	return out.String(), err
}

func TestStatusCommand_NoEntitlement(t *testing.T) {
	setEnv(t)

	out, err := execute(t, "status", "--fid", "5", "--wallet", wallet)
	require.NoError(t, err)

	var status map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &status))
	assert.Equal(t, false, status["is_premium"])
}

func TestStatusCommand_InvalidWallet(t *testing.T) {
	setEnv(t)

	_, err := execute(t, "status", "--fid", "5", "--wallet", "0x12")
	assert.Error(t, err)
}

func TestCompactCommand(t *testing.T) {
	setEnv(t)

	out, err := execute(t, "compact", "--retention", "24h")
	require.NoError(t, err)

	var result map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &result))
	assert.Equal(t, 0, result["removed"])
}

func TestTokenCommand(t *testing.T) {
	setEnv(t)
	t.Setenv("CASTPASS_AUTH_JWT_SECRET", "cli-secret")

	out, err := execute(t, "token", "--fid", "9")
	require.NoError(t, err)

	var token tokenOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &token))
	assert.Equal(t, uint64(9), token.FID)

	claims, err := auth.NewJWTService("cli-secret", "").Verify(token.Token)
	require.NoError(t, err)
	fid, err := claims.FID()
	require.NoError(t, err)
	assert.Equal(t, uint64(9), fid)
}

func TestTokenCommand_RequiresSecret(t *testing.T) {
	setEnv(t)

	_, err := execute(t, "token", "--fid", "9")
	assert.Error(t, err)
}
