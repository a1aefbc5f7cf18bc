package domain

import "time"

// AuthSession is the single persisted login of this device.
type AuthSession struct {
	UserID     string    `json:"userId"`
	Token      string    `json:"token"`
	ExpiresAt  time.Time `json:"expiresAt"`
	RememberMe bool      `json:"rememberMe"`
}

// IsExpired reports whether the session's expiry has passed at now.
func (s *AuthSession) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
