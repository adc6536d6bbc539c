package hasher

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/satriahrh/pixel-relay/domain"
)

// New returns a domain.Hasher backed by SHA‑256.
func New() domain.Hasher { return sha256Hasher{} }

type sha256Hasher struct{}

// Digest hashes role and text of every message in order. The result is
// truncated to 16 hex chars, enough to tell requests apart in logs.
func (h sha256Hasher) Digest(history domain.ConversationHistory) string {
	sum := sha256.New()
	for _, msg := range history {
		sum.Write([]byte(msg.Role))
		sum.Write([]byte{0})
		sum.Write([]byte(msg.Text))
		sum.Write([]byte{0})
	}
	return hex.EncodeToString(sum.Sum(nil))[:16]
}
