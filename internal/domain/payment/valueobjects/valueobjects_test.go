package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNetwork(t *testing.T) {
	n, err := NewNetwork("base")
	require.NoError(t, err)
	assert.Equal(t, NetworkBase, n)

	_, err = NewNetwork("polygon")
	assert.Error(t, err)
	_, err = NewNetwork("Mainnet")
	assert.Error(t, err)
}

func TestNormalizeAddress(t *testing.T) {
	got, err := NormalizeAddress(" 0x52908400098527886E0F7030069857D2E4169EE7 ")
	require.NoError(t, err)
	assert.Equal(t, "0x52908400098527886e0f7030069857d2e4169ee7", got)

	for _, bad := range []string{"", "0x123", "52908400098527886E0F7030069857D2E4169EEZ", "vitalik.eth"} {
		_, err := NormalizeAddress(bad)
		assert.Error(t, err, bad)
	}
}

func TestSameAddress(t *testing.T) {
	assert.True(t, SameAddress("0xde709f2102306220921060314715629080e2fb77", "0xDE709F2102306220921060314715629080E2FB77"))
	assert.False(t, SameAddress("0xde709f2102306220921060314715629080e2fb77", "0x27b1fdb04752bbc536007a920d24acb045561c26"))
	assert.False(t, SameAddress("", ""))
}

func TestCurrency(t *testing.T) {
	c := NewCurrency(" usdc ")
	assert.Equal(t, Currency("USDC"), c)
	assert.True(t, c.Matches("USDC"))
	assert.True(t, c.Matches("usdc"))
	assert.False(t, c.Matches("USDT"))
}

func TestVerificationStatus_Transitions(t *testing.T) {
	assert.True(t, VerificationStatusPending.CanTransitionTo(VerificationStatusScanning))
	assert.True(t, VerificationStatusScanning.CanTransitionTo(VerificationStatusMatched))
	assert.True(t, VerificationStatusScanning.CanTransitionTo(VerificationStatusUnmatched))
	assert.True(t, VerificationStatusScanning.CanTransitionTo(VerificationStatusError))
	assert.False(t, VerificationStatusPending.CanTransitionTo(VerificationStatusMatched))
	assert.False(t, VerificationStatusMatched.CanTransitionTo(VerificationStatusScanning))

	assert.True(t, VerificationStatusError.IsTerminal())
	assert.False(t, VerificationStatusScanning.IsTerminal())
}
