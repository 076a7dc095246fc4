package engine

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"

	errs "github.com/educlove/discovery-engine/pkg/errors"
	"github.com/educlove/discovery-engine/pkg/logger"
	"github.com/educlove/discovery-engine/pkg/metrics"

	"github.com/educlove/discovery-engine/internal/api"
	"github.com/educlove/discovery-engine/internal/input"
	"github.com/educlove/discovery-engine/internal/models"
	"github.com/educlove/discovery-engine/internal/nav"
)

const prefsCacheKey = "own_profile"

// Transition is the in-flight request the loop is currently settling.
type Transition struct {
	Action    input.Action
	ProfileID string
}

// DiscoveryLoop drives one-candidate-at-a-time discovery. It owns a single
// candidate slot and a single in-flight transition slot: while a transition
// is settling, every further skip or like is rejected with ErrBusy instead
// of being queued, so the user can never act twice on the same candidate.
type DiscoveryLoop struct {
	api     api.Client
	visits  *VisitRecorder
	matches *MatchResolver
	guard   *CriteriaGuard
	nav     nav.Navigator
	prefs   *cache.Cache

	demoMode bool

	mu        sync.Mutex
	pending   *Transition
	candidate *models.CandidateProfile
	criteria  *models.SearchCriteria
	total     int
	exhausted bool
	message   string
}

// LoopOption configures a DiscoveryLoop.
type LoopOption func(*DiscoveryLoop)

// WithDemoMode makes candidate URLs use the demo route prefix.
func WithDemoMode() LoopOption {
	return func(l *DiscoveryLoop) { l.demoMode = true }
}

// WithPrefsCacheTTL overrides how long the own-profile preferences are
// served from cache.
func WithPrefsCacheTTL(ttl time.Duration) LoopOption {
	return func(l *DiscoveryLoop) {
		l.prefs = cache.New(ttl, ttl)
	}
}

func NewDiscoveryLoop(client api.Client, visits *VisitRecorder, matches *MatchResolver, guard *CriteriaGuard, navigator nav.Navigator, opts ...LoopOption) *DiscoveryLoop {
	l := &DiscoveryLoop{
		api:     client,
		visits:  visits,
		matches: matches,
		guard:   guard,
		nav:     navigator,
		prefs:   cache.New(10*time.Minute, 10*time.Minute),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Current returns the candidate in the slot (nil when empty) and whether a
// transition is in flight.
func (l *DiscoveryLoop) Current() (*models.CandidateProfile, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.candidate, l.pending != nil
}

// Pending returns the transition being settled, or nil when idle.
func (l *DiscoveryLoop) Pending() *Transition {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.pending
}

// Criteria returns the server's echo of the active search criteria from the
// last fetch. The filter summary bar renders from this.
func (l *DiscoveryLoop) Criteria() *models.SearchCriteria {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.criteria
}

// Exhausted reports whether the last fetch found no remaining candidates.
func (l *DiscoveryLoop) Exhausted() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.exhausted
}

// Total returns the candidate pool size reported by the last fetch.
func (l *DiscoveryLoop) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Message returns the server's human-readable note from the last fetch,
// such as the pool-exhausted text.
func (l *DiscoveryLoop) Message() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.message
}

// Init fetches the first candidate and warms the preference cache. The
// fetch is ordered on the criteria guard: until the guard has resolved and
// confirmed a saved record, no candidate request leaves the loop and
// ErrNoCriteria is returned.
func (l *DiscoveryLoop) Init(ctx context.Context) error {
	if l.guard.Criteria() == nil {
		return errs.ErrNoCriteria
	}
	if !l.claim(&Transition{Action: input.ActionNone}) {
		return errs.ErrBusy
	}
	defer l.release()

	if err := l.advance(ctx); err != nil {
		return err
	}
	// warm the filter summary; a failure here only delays the bar
	if _, err := l.Preferences(ctx); err != nil {
		logger.Warn("Could not load own preferences", zap.Error(err))
	}
	return nil
}

// Skip records a visit for the current candidate, waits for it to settle so
// the backend won't serve the same profile again, then fetches the next one.
func (l *DiscoveryLoop) Skip(ctx context.Context) error {
	current, err := l.begin(input.ActionSkip)
	if err != nil {
		return err
	}
	defer l.release()

	metrics.DiscoveryActions.WithLabelValues("skip").Inc()
	l.visits.Record(ctx, current.ID)
	return l.advance(ctx)
}

// Like submits a like on the current candidate. The visit is recorded in
// the background at submission time. A mutual match hands off to the
// conversation; any other verdict advances to the next candidate without a
// second visit record. A failed submission keeps the candidate in the slot
// so the user can retry with the draft intact.
func (l *DiscoveryLoop) Like(ctx context.Context, message string) (*models.MatchOutcome, error) {
	current, err := l.begin(input.ActionLike)
	if err != nil {
		return nil, err
	}
	defer l.release()

	metrics.DiscoveryActions.WithLabelValues("like").Inc()
	l.visits.RecordAsync(ctx, current.ID)

	outcome, err := l.matches.SubmitLike(ctx, current.ID, message)
	if err != nil {
		return nil, err
	}

	if outcome.Mutual() {
		l.mu.Lock()
		l.candidate = nil
		l.mu.Unlock()
		l.nav.Push(nav.ConversationRoute(outcome.MatchID))
		return outcome, nil
	}

	if err := l.advance(ctx); err != nil {
		return outcome, err
	}
	return outcome, nil
}

// HandleAction dispatches a unified input action. The message only applies
// to likes; it is the composed text from the like dialog.
func (l *DiscoveryLoop) HandleAction(ctx context.Context, action input.Action, message string) (*models.MatchOutcome, error) {
	switch action {
	case input.ActionSkip:
		return nil, l.Skip(ctx)
	case input.ActionLike:
		return l.Like(ctx, message)
	default:
		return nil, nil
	}
}

// Preferences returns the user's own profile for the filter summary bar,
// served from cache between refreshes.
func (l *DiscoveryLoop) Preferences(ctx context.Context) (*models.OwnProfile, error) {
	if cached, ok := l.prefs.Get(prefsCacheKey); ok {
		return cached.(*models.OwnProfile), nil
	}
	profile, err := l.api.GetMyProfile(ctx)
	if err != nil {
		return nil, err
	}
	l.prefs.SetDefault(prefsCacheKey, profile)
	return profile, nil
}

// begin validates and claims the transition slot for a user action.
func (l *DiscoveryLoop) begin(action input.Action) (*models.CandidateProfile, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending != nil {
		return nil, errs.ErrBusy
	}
	if l.candidate == nil {
		return nil, errs.ErrNoCandidate
	}
	l.pending = &Transition{Action: action, ProfileID: l.candidate.ID}
	return l.candidate, nil
}

func (l *DiscoveryLoop) claim(t *Transition) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.pending != nil {
		return false
	}
	l.pending = t
	return true
}

func (l *DiscoveryLoop) release() {
	l.mu.Lock()
	l.pending = nil
	l.mu.Unlock()
}

// advance fetches the next candidate into the slot. Must be called with the
// transition slot held. On success the URL is replaced, not pushed: paging
// through candidates leaves no history trail and never remounts the surface.
func (l *DiscoveryLoop) advance(ctx context.Context) error {
	page, err := l.api.NextProfile(ctx)
	if err != nil {
		logger.LogError(err, "Candidate fetch failed")
		return err
	}

	l.mu.Lock()
	l.total = page.Total
	l.message = page.Message
	if page.SearchCriteria != nil {
		l.criteria = page.SearchCriteria
	}
	next := page.First()
	l.candidate = next
	l.exhausted = next == nil
	l.mu.Unlock()

	if next == nil {
		logger.Info("Candidate pool exhausted", zap.Int("total", page.Total))
		return nil
	}

	l.nav.Replace(nav.ProfileRoute(next.ID, l.demoMode))
	logger.Debug("Candidate served",
		zap.String("profile_id", next.ID),
		zap.Int("total", page.Total))
	return nil
}
