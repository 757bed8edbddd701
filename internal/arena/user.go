package arena

import (
	"encoding/json"

	"github.com/tunearena/gateway/internal/secret"
)

// User is a pseudonymous identity. Raw IPs and fingerprints are salted the
// moment a User is constructed or decoded; the raw values are never stored
// and never serialized.
type User struct {
	SaltedIP          *string `json:"salted_ip"`
	SaltedFingerprint *string `json:"salted_fingerprint"`
}

// NewUser salts the provided raw values with the process salt. Empty
// strings mean the corresponding signal is unavailable.
func NewUser(ip, fingerprint string) User {
	var u User
	salt := secret.Get(secret.UserSaltTag)
	if ip != "" {
		h := SaltedChecksum(ip, salt)
		u.SaltedIP = &h
	}
	if fingerprint != "" {
		h := SaltedChecksum(fingerprint, salt)
		u.SaltedFingerprint = &h
	}
	return u
}

// UnmarshalJSON accepts either pre-salted fields or raw ip/fingerprint
// fields from the client; raw values are salted and discarded here so they
// cannot leak into any downstream record.
func (u *User) UnmarshalJSON(b []byte) error {
	var wire struct {
		IP                *string `json:"ip"`
		Fingerprint       *string `json:"fingerprint"`
		SaltedIP          *string `json:"salted_ip"`
		SaltedFingerprint *string `json:"salted_fingerprint"`
	}
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	u.SaltedIP = wire.SaltedIP
	u.SaltedFingerprint = wire.SaltedFingerprint
	salt := secret.Get(secret.UserSaltTag)
	if wire.IP != nil && *wire.IP != "" {
		h := SaltedChecksum(*wire.IP, salt)
		u.SaltedIP = &h
	}
	if wire.Fingerprint != nil && *wire.Fingerprint != "" {
		h := SaltedChecksum(*wire.Fingerprint, salt)
		u.SaltedFingerprint = &h
	}
	return nil
}

// Anonymous reports whether the user carries no tracking signal at all.
func (u User) Anonymous() bool {
	return u.SaltedIP == nil && u.SaltedFingerprint == nil
}

// Checksum is the stable identity hash over both salted fields; nulls are
// included so partially-identified users remain distinguishable.
func (u User) Checksum() string {
	d := map[string]any{
		"salted_ip":          nil,
		"salted_fingerprint": nil,
	}
	if u.SaltedIP != nil {
		d["salted_ip"] = *u.SaltedIP
	}
	if u.SaltedFingerprint != nil {
		d["salted_fingerprint"] = *u.SaltedFingerprint
	}
	return dictChecksum(d)
}
