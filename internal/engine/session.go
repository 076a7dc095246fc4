// Package engine implements the client-side discovery engine: the session
// gate, the criteria guard, the single-slot discovery loop, the match
// resolver and the visit recorder.
package engine

import (
	"context"
	"sync"

	"go.uber.org/zap"

	errs "github.com/educlove/discovery-engine/pkg/errors"
	"github.com/educlove/discovery-engine/pkg/logger"
	"github.com/educlove/discovery-engine/pkg/metrics"

	"github.com/educlove/discovery-engine/internal/api"
	"github.com/educlove/discovery-engine/internal/models"
	"github.com/educlove/discovery-engine/internal/nav"
)

// GateState is the session's position in the onboarding funnel. The zero
// value is GateLoading so a freshly constructed context never allows
// anything through.
type GateState int

const (
	GateLoading GateState = iota
	GateUnauthenticated
	GateNeedsVerification
	GateNeedsProfile
	GateReady
)

func (s GateState) String() string {
	switch s {
	case GateLoading:
		return "loading"
	case GateUnauthenticated:
		return "unauthenticated"
	case GateNeedsVerification:
		return "needs_verification"
	case GateNeedsProfile:
		return "needs_profile"
	case GateReady:
		return "ready"
	default:
		return "unknown"
	}
}

// SessionContext holds the session facts shared by every gated surface.
// It starts in the loading state and stays there until the first Set, Clear
// or successful Refresh.
type SessionContext struct {
	mu      sync.RWMutex
	loading bool
	session models.Session
}

func NewSessionContext() *SessionContext {
	return &SessionContext{loading: true}
}

// Set installs resolved session facts and leaves the loading state.
func (c *SessionContext) Set(session models.Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	c.session = session
}

// Clear resets to a resolved, unauthenticated session. Used on sign-out and
// on a credential rejection from the backend.
func (c *SessionContext) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.loading = false
	c.session = models.Session{}
}

// Session returns the current facts and whether they are still loading.
func (c *SessionContext) Session() (models.Session, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session, c.loading
}

// Refresh resolves the session against the backend. A credential rejection
// is a resolved unauthenticated session, not an error; any other failure
// leaves the current state untouched so a transient outage never bounces a
// signed-in user to the sign-in page.
func (c *SessionContext) Refresh(ctx context.Context, client api.Client) error {
	session, err := client.GetSession(ctx)
	if err != nil {
		if errs.Is(err, errs.ErrUnauthorized) {
			c.Clear()
			return nil
		}
		logger.LogError(err, "Session refresh failed")
		return err
	}
	c.Set(*session)
	return nil
}

// State derives the gate state from the session facts.
func (c *SessionContext) State() GateState {
	session, loading := c.Session()
	switch {
	case loading:
		return GateLoading
	case !session.Authenticated:
		return GateUnauthenticated
	case !session.EmailVerified:
		return GateNeedsVerification
	case !session.ProfileCompleted:
		return GateNeedsProfile
	default:
		return GateReady
	}
}

// GateDecision is the outcome of a gate check. Exactly one of Pending,
// Allow or a non-empty Redirect is set.
type GateDecision struct {
	// Pending means the session is still resolving; the caller renders
	// nothing and re-checks once facts arrive.
	Pending bool
	// Allow means the destination may render.
	Allow bool
	// Redirect is the route to send the user to instead.
	Redirect string
	// Email carries the unverified address for the verification surface.
	Email string
}

// SessionGate decides whether a protected destination may render.
type SessionGate struct {
	sessions *SessionContext
}

func NewSessionGate(sessions *SessionContext) *SessionGate {
	return &SessionGate{sessions: sessions}
}

// Check evaluates the gate for a destination route. An incomplete profile
// redirects everywhere except to the profile editor itself, and an
// unverified email everywhere except to the verification page; without
// those carve-outs the redirect would loop.
func (g *SessionGate) Check(destination string) GateDecision {
	state := g.sessions.State()
	metrics.GateDecisions.WithLabelValues(state.String()).Inc()

	switch state {
	case GateLoading:
		return GateDecision{Pending: true}

	case GateUnauthenticated:
		return GateDecision{Redirect: nav.RouteSignIn}

	case GateNeedsVerification:
		if destination == nav.RouteVerifyEmail {
			return GateDecision{Allow: true}
		}
		session, _ := g.sessions.Session()
		return GateDecision{Redirect: nav.RouteVerifyEmail, Email: session.Email}

	case GateNeedsProfile:
		if destination == nav.RouteCompleteProfile {
			return GateDecision{Allow: true}
		}
		logger.Debug("Gate redirecting incomplete profile",
			zap.String("destination", destination))
		return GateDecision{Redirect: nav.RouteCompleteProfile}

	default:
		return GateDecision{Allow: true}
	}
}
