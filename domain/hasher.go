package domain

// Hasher produces a stable digest of a history so requests can be
// correlated in logs without logging the conversation itself.
type Hasher interface {
	Digest(history ConversationHistory) string
}
