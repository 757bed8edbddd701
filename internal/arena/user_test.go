package arena

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tunearena/gateway/internal/secret"
)

func TestNewUserSaltsRawValues(t *testing.T) {
	secret.Set(secret.UserSaltTag, "test-salt")

	u := NewUser("203.0.113.9", "fp-abc")
	require.NotNil(t, u.SaltedIP)
	require.NotNil(t, u.SaltedFingerprint)
	assert.Equal(t, SaltedChecksum("203.0.113.9", "test-salt"), *u.SaltedIP)
	assert.Equal(t, SaltedChecksum("fp-abc", "test-salt"), *u.SaltedFingerprint)

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), "203.0.113.9")
	assert.NotContains(t, string(b), "fp-abc")
}

func TestUserUnmarshalSaltsRawFields(t *testing.T) {
	secret.Set(secret.UserSaltTag, "test-salt")

	var u User
	require.NoError(t, json.Unmarshal([]byte(`{"ip": "198.51.100.7", "fingerprint": "fp-xyz"}`), &u))
	require.NotNil(t, u.SaltedIP)
	require.NotNil(t, u.SaltedFingerprint)
	assert.Equal(t, SaltedChecksum("198.51.100.7", "test-salt"), *u.SaltedIP)

	// Round-tripping the salted form is a no-op.
	b, err := json.Marshal(u)
	require.NoError(t, err)
	var again User
	require.NoError(t, json.Unmarshal(b, &again))
	assert.Equal(t, u, again)
}

func TestUserChecksumIncludesNulls(t *testing.T) {
	secret.Set(secret.UserSaltTag, "test-salt")

	ipOnly := NewUser("203.0.113.9", "")
	fpOnly := NewUser("", "fp-abc")
	assert.False(t, ipOnly.Anonymous())
	assert.NotEqual(t, ipOnly.Checksum(), fpOnly.Checksum())

	var empty User
	assert.True(t, empty.Anonymous())
	assert.NotEmpty(t, empty.Checksum())
}
