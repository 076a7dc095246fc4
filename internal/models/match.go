package models

// MaxLikeMessageLength bounds the message sent with a like. The server
// enforces the same limit; the client pre-checks to avoid a doomed request.
const MaxLikeMessageLength = 500

// Server verdicts for a like submission.
const (
	ActionMutualMatch  = "mutual_match"
	ActionLikeSent     = "like_sent"
	ActionAlreadyLiked = "already_liked"
)

// Match statuses as stored by the backend.
const (
	MatchStatusPending  = "pending"
	MatchStatusAccepted = "accepted"
	MatchStatusRejected = "rejected"
	MatchStatusBlocked  = "blocked"
)

// LikeRequest is the body of POST /profiles/{id}:like.
type LikeRequest struct {
	Message string `json:"message" binding:"required,min=1,max=500" validate:"required,min=1,max=500"`
}

// MatchOutcome is the server's verdict on a like submission.
type MatchOutcome struct {
	Action  string `json:"action"`
	MatchID string `json:"match_id,omitempty"`
	Status  string `json:"status,omitempty"`
	Message string `json:"message,omitempty"`
}

// Mutual reports whether the like resolved to a mutual match, which hands
// the user off to the conversation surface.
func (o *MatchOutcome) Mutual() bool {
	return o.Action == ActionMutualMatch
}

// VisitResponse is the acknowledgement of POST /api/profile-visits/{id}.
// The engine never consumes it beyond the status code.
type VisitResponse struct {
	Message          string `json:"message,omitempty"`
	VisitID          string `json:"visit_id,omitempty"`
	UserID           string `json:"user_id,omitempty"`
	VisitedProfileID string `json:"visited_profile_id,omitempty"`
}
