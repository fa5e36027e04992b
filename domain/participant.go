package domain

// SessionAndUserID identifies one connection's presence.
// A user may hold several sessions at once (multiple devices or tabs).
type SessionAndUserID struct {
	SessionID string
	UserID    string
}
