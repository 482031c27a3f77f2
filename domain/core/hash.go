package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// ConfigHash fingerprints a scenario configuration so that any result row can
// be traced back to the exact parameter set that produced it.
type ConfigHash Hash

func (h ConfigHash) String() string { return Hash(h).String() }

// ComputeConfigHash builds a deterministic fingerprint from ordered stage
// descriptors. Callers pass "name|kind|p1=v1,p2=v2" strings in declaration
// order.
func ComputeConfigHash(scenario string, stageDescriptors []string) ConfigHash {
	var data strings.Builder
	data.WriteString(scenario)
	for _, d := range stageDescriptors {
		data.WriteString("|")
		data.WriteString(d)
	}
	return ConfigHash(NewHash([]byte(data.String())))
}

// ComputeRunFingerprint fingerprints a full cohort run (config + seed + N)
// for the reproducibility audit trail.
func ComputeRunFingerprint(configHash ConfigHash, seed int64, n int) Hash {
	return NewHash([]byte(fmt.Sprintf("%s|%d|%d", configHash, seed, n)))
}
