// Package secret holds process-wide secret material. Secrets resolve from
// the environment (ARENA_SECRET_<TAG>) or are generated once per process;
// values are cached for the process lifetime and must never be logged.
package secret

import (
	"crypto/rand"
	"encoding/hex"
	"os"
	"strings"
	"sync"
)

// UserSaltTag names the salt mixed into user IPs and fingerprints before
// they are stored anywhere.
const UserSaltTag = "ANONYMIZED_USER_SALT"

const envPrefix = "ARENA_SECRET_"

var (
	mu     sync.Mutex
	values = map[string]string{}
)

// Get returns the secret for tag, resolving in order: explicit Set, the
// ARENA_SECRET_<TAG> environment variable, then a freshly generated
// cryptographically random value cached for the process lifetime.
func Get(tag string) string {
	mu.Lock()
	defer mu.Unlock()
	if v, ok := values[tag]; ok {
		return v
	}
	if v := os.Getenv(envPrefix + strings.ToUpper(tag)); v != "" {
		values[tag] = v
		return v
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the platform entropy source is broken;
		// nothing sensible can run in that state.
		panic("secret: crypto/rand unavailable: " + err.Error())
	}
	v := hex.EncodeToString(buf)
	values[tag] = v
	return v
}

// Set pins a secret value, overriding environment and generation. Tests
// use this to inject a fixed user salt.
func Set(tag, value string) {
	mu.Lock()
	defer mu.Unlock()
	values[tag] = value
}
