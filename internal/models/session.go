package models

// Session is the client's view of the current user's authentication and
// onboarding status. It is supplied by the backend session check and by the
// claims of the bearer token; the engine only reads and reacts to it.
type Session struct {
	Identity         string `json:"sub"`
	Email            string `json:"email"`
	Authenticated    bool   `json:"authenticated"`
	EmailVerified    bool   `json:"email_verified"`
	ProfileCompleted bool   `json:"profile_completed"`
}

// SessionCheck is the response of GET /auth/session, the lightweight probe
// the engine refreshes its gate facts from.
type SessionCheck struct {
	Authenticated    bool   `json:"authenticated"`
	Email            string `json:"email,omitempty"`
	EmailVerified    bool   `json:"email_verified"`
	ProfileCompleted bool   `json:"profile_completed"`
}

// Session converts the probe result into the engine's session facts.
func (s *SessionCheck) Session() Session {
	return Session{
		Email:            s.Email,
		Authenticated:    s.Authenticated,
		EmailVerified:    s.EmailVerified,
		ProfileCompleted: s.ProfileCompleted,
	}
}

// SessionInfo is the response envelope of GET /auth/me.
type SessionInfo struct {
	UserID           string `json:"user_id"`
	Sub              string `json:"sub"`
	Email            string `json:"email"`
	Name             string `json:"name,omitempty"`
	Provider         string `json:"provider,omitempty"`
	HasProfile       bool   `json:"has_profile"`
	ProfileID        string `json:"profile_id,omitempty"`
	EmailVerified    bool   `json:"email_verified"`
	ProfileCompleted bool   `json:"profile_completed"`
}

// Session converts the backend session info into the engine's session facts.
// A response from /auth/me implies valid credentials, so Authenticated is
// always true here; the unauthenticated case is an HTTP 401, never a body.
func (s *SessionInfo) Session() Session {
	return Session{
		Identity:         s.Sub,
		Email:            s.Email,
		Authenticated:    true,
		EmailVerified:    s.EmailVerified,
		ProfileCompleted: s.ProfileCompleted,
	}
}
