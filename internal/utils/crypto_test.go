// internal/utils/crypto_test.go
package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRandomString(t *testing.T) {
	s1, err := GenerateRandomString(32)
	require.NoError(t, err)
	assert.Len(t, s1, 32)

	s2, err := GenerateRandomString(32)
	require.NoError(t, err)
	assert.NotEqual(t, s1, s2)
}

func TestHashStringIsDeterministic(t *testing.T) {
	assert.Equal(t, HashString("payline"), HashString("payline"))
	assert.NotEqual(t, HashString("payline"), HashString("Payline"))
	assert.Len(t, HashString("payline"), 64)
}

func TestSignAndVerifyPayload(t *testing.T) {
	payload := []byte(`{"reference_id":"bet-123","amount":"100000"}`)
	secret := "webhook-secret"

	sig := SignPayload(payload, secret)
	assert.True(t, VerifySignature(payload, secret, sig))
}

func TestVerifySignatureRejectsTampering(t *testing.T) {
	payload := []byte(`{"reference_id":"bet-123","amount":"100000"}`)
	secret := "webhook-secret"
	sig := SignPayload(payload, secret)

	tampered := []byte(`{"reference_id":"bet-123","amount":"999999"}`)
	assert.False(t, VerifySignature(tampered, secret, sig))
	assert.False(t, VerifySignature(payload, "other-secret", sig))
	assert.False(t, VerifySignature(payload, secret, "deadbeef"))
}
