package idhash

import (
	"crypto/sha256"
	"encoding/hex"
)

// ComputeEventSetVersion hashes an ordered list of event ids.
// Two snapshots have the same version only if they hold the same events in
// the same order. An empty list has a fixed, well-defined version.
func ComputeEventSetVersion(eventIDs []string) string {
	h := sha256.New()
	for _, id := range eventIDs {
		h.Write([]byte(id))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}
