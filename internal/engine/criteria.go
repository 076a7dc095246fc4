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

// CriteriaGuard enforces criteria-before-discovery: the discovery surface
// may not fetch a single candidate until the user's saved search criteria
// have been confirmed to exist. A user without criteria is sent to the
// criteria editor with a history replacement, so Back never returns them to
// a half-initialized discovery page.
type CriteriaGuard struct {
	api api.Client
	nav nav.Navigator

	mu       sync.Mutex
	resolved bool
	allowed  bool
	criteria *models.SearchCriteria
}

func NewCriteriaGuard(client api.Client, navigator nav.Navigator) *CriteriaGuard {
	return &CriteriaGuard{api: client, nav: navigator}
}

// Ensure resolves the guard. The backend is asked at most once per guard
// lifetime; repeat calls return the recorded verdict. It reports whether
// discovery may proceed. A credential rejection is returned to the caller
// for the session gate to handle; every other failure redirects to the
// criteria editor rather than leaving the user on a dead surface.
func (g *CriteriaGuard) Ensure(ctx context.Context) (bool, error) {
	g.mu.Lock()
	if g.resolved {
		allowed := g.allowed
		g.mu.Unlock()
		return allowed, nil
	}
	g.mu.Unlock()

	criteria, err := g.api.GetSearchCriteria(ctx)
	if err != nil {
		if errs.Is(err, errs.ErrUnauthorized) {
			return false, err
		}
		logger.LogError(err, "Criteria fetch failed, redirecting to editor")
		g.resolve(false, nil)
		g.redirect("error")
		return false, nil
	}

	if criteria == nil {
		logger.Info("No saved search criteria, redirecting to editor")
		g.resolve(false, nil)
		g.redirect("missing")
		return false, nil
	}

	g.resolve(true, criteria)
	return true, nil
}

// Resolved reports whether the guard has reached a verdict. Discovery
// initialization is ordered on this: no candidate fetch before resolution.
func (g *CriteriaGuard) Resolved() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.resolved
}

// Criteria returns the confirmed criteria, or nil before resolution or
// after a redirect.
func (g *CriteriaGuard) Criteria() *models.SearchCriteria {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.criteria
}

// Reset forgets the verdict so the next Ensure asks the backend again.
// Called after the user saves new criteria in the editor.
func (g *CriteriaGuard) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resolved = false
	g.allowed = false
	g.criteria = nil
}

func (g *CriteriaGuard) resolve(allowed bool, criteria *models.SearchCriteria) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.resolved = true
	g.allowed = allowed
	g.criteria = criteria
}

func (g *CriteriaGuard) redirect(reason string) {
	metrics.CriteriaRedirects.WithLabelValues(reason).Inc()
	logger.Debug("Criteria guard redirect", zap.String("reason", reason))
	g.nav.Replace(nav.RouteSearchCriteria)
}
