package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	errs "github.com/educlove/discovery-engine/pkg/errors"

	"github.com/educlove/discovery-engine/internal/input"
	"github.com/educlove/discovery-engine/internal/models"
)

// allowedGuard is a criteria guard that already confirmed a saved record,
// the state every discovery test except the ordering ones starts from.
func allowedGuard() *CriteriaGuard {
	g := NewCriteriaGuard(nil, nil)
	g.resolve(true, savedCriteria())
	return g
}

func newTestLoop(client *MockAPIClient, navigator *MockNavigator) *DiscoveryLoop {
	// Init warms the preference cache; every test gets a stub profile
	client.On("GetMyProfile", mock.Anything).Return(&models.OwnProfile{
		FirstName:        "Marie",
		LookingForGender: []string{"homme"},
	}, nil).Maybe()

	return NewDiscoveryLoop(
		client,
		NewVisitRecorder(client),
		NewMatchResolver(client),
		allowedGuard(),
		navigator,
	)
}

func TestInitRequiresResolvedCriteriaGuard(t *testing.T) {
	client := new(MockAPIClient)
	navigator := new(MockNavigator)

	loop := NewDiscoveryLoop(
		client,
		NewVisitRecorder(client),
		NewMatchResolver(client),
		NewCriteriaGuard(client, navigator),
		navigator,
	)

	assert.ErrorIs(t, loop.Init(context.Background()), errs.ErrNoCriteria)
	client.AssertNumberOfCalls(t, "NextProfile", 0)
}

func TestInitRejectedByCriteriaGuard(t *testing.T) {
	client := new(MockAPIClient)
	navigator := new(MockNavigator)

	// guard resolved against discovery: no saved record, user redirected
	guard := NewCriteriaGuard(client, navigator)
	guard.resolve(false, nil)

	loop := NewDiscoveryLoop(
		client,
		NewVisitRecorder(client),
		NewMatchResolver(client),
		guard,
		navigator,
	)

	assert.ErrorIs(t, loop.Init(context.Background()), errs.ErrNoCriteria)
	client.AssertNumberOfCalls(t, "NextProfile", 0)
}

func TestInitServesFirstCandidate(t *testing.T) {
	client := new(MockAPIClient)
	client.On("NextProfile", mock.Anything).Return(pageWith("p1", 5), nil).Once()
	navigator := new(MockNavigator)
	navigator.On("Replace", "/profile/p1").Once()

	loop := newTestLoop(client, navigator)
	require.NoError(t, loop.Init(context.Background()))

	current, busy := loop.Current()
	require.NotNil(t, current)
	assert.Equal(t, "p1", current.ID)
	assert.False(t, busy)
	assert.Equal(t, 5, loop.Total())
	assert.False(t, loop.Exhausted())
	navigator.AssertExpectations(t)
}

func TestInitExhaustedPool(t *testing.T) {
	client := new(MockAPIClient)
	client.On("NextProfile", mock.Anything).Return(emptyPage(), nil).Once()
	navigator := new(MockNavigator)

	loop := newTestLoop(client, navigator)
	require.NoError(t, loop.Init(context.Background()))

	current, _ := loop.Current()
	assert.Nil(t, current)
	assert.True(t, loop.Exhausted())
	assert.NotEmpty(t, loop.Message())
	navigator.AssertNotCalled(t, "Replace", mock.Anything)
}

func TestSkipRecordsVisitThenFetches(t *testing.T) {
	var order []string
	var mu sync.Mutex
	note := func(step string) {
		mu.Lock()
		order = append(order, step)
		mu.Unlock()
	}

	client := new(MockAPIClient)
	client.On("NextProfile", mock.Anything).Return(pageWith("p1", 3), nil).Once().
		Run(func(mock.Arguments) { note("fetch") })
	client.On("RecordVisit", mock.Anything, "p1").Return(nil).Once().
		Run(func(mock.Arguments) { note("visit") })
	client.On("NextProfile", mock.Anything).Return(pageWith("p2", 2), nil).Once().
		Run(func(mock.Arguments) { note("fetch") })

	navigator := new(MockNavigator)
	navigator.On("Replace", mock.Anything)

	loop := newTestLoop(client, navigator)
	require.NoError(t, loop.Init(context.Background()))
	require.NoError(t, loop.Skip(context.Background()))

	current, _ := loop.Current()
	require.NotNil(t, current)
	assert.Equal(t, "p2", current.ID)

	// the visit must settle before the next fetch so the backend never
	// serves the skipped profile again
	assert.Equal(t, []string{"fetch", "visit", "fetch"}, order)
	navigator.AssertCalled(t, "Replace", "/profile/p2")
}

func TestSkipSurvivesVisitFailure(t *testing.T) {
	client := new(MockAPIClient)
	client.On("NextProfile", mock.Anything).Return(pageWith("p1", 3), nil).Once()
	client.On("RecordVisit", mock.Anything, "p1").Return(errs.ErrServerError).Once()
	client.On("NextProfile", mock.Anything).Return(pageWith("p2", 2), nil).Once()

	navigator := new(MockNavigator)
	navigator.On("Replace", mock.Anything)

	loop := newTestLoop(client, navigator)
	require.NoError(t, loop.Init(context.Background()))

	// telemetry failures never block the transition
	require.NoError(t, loop.Skip(context.Background()))
	current, _ := loop.Current()
	assert.Equal(t, "p2", current.ID)
}

func TestSkipWithEmptySlot(t *testing.T) {
	client := new(MockAPIClient)
	client.On("NextProfile", mock.Anything).Return(emptyPage(), nil).Once()
	navigator := new(MockNavigator)

	loop := newTestLoop(client, navigator)
	require.NoError(t, loop.Init(context.Background()))

	assert.ErrorIs(t, loop.Skip(context.Background()), errs.ErrNoCandidate)
	client.AssertNumberOfCalls(t, "RecordVisit", 0)
}

func TestSkipWhileInFlightIsRejected(t *testing.T) {
	hold := make(chan struct{})
	started := make(chan struct{})

	client := new(MockAPIClient)
	client.On("NextProfile", mock.Anything).Return(pageWith("p1", 3), nil).Once()
	client.On("RecordVisit", mock.Anything, "p1").Return(nil).Once().
		Run(func(mock.Arguments) {
			close(started)
			<-hold
		})
	client.On("NextProfile", mock.Anything).Return(pageWith("p2", 2), nil).Once()

	navigator := new(MockNavigator)
	navigator.On("Replace", mock.Anything)

	loop := newTestLoop(client, navigator)
	require.NoError(t, loop.Init(context.Background()))

	done := make(chan error, 1)
	go func() { done <- loop.Skip(context.Background()) }()

	<-started
	// second action while the first is still settling
	assert.ErrorIs(t, loop.Skip(context.Background()), errs.ErrBusy)
	_, busy := loop.Current()
	assert.True(t, busy)

	close(hold)
	require.NoError(t, <-done)

	// exactly one visit and one fetch for the single accepted skip
	client.AssertNumberOfCalls(t, "RecordVisit", 1)
	client.AssertNumberOfCalls(t, "NextProfile", 2)
}

func TestLikeMutualMatchHandsOff(t *testing.T) {
	visitDone := make(chan struct{})

	client := new(MockAPIClient)
	client.On("NextProfile", mock.Anything).Return(pageWith("p1", 3), nil).Once()
	client.On("RecordVisit", mock.Anything, "p1").Return(nil).Once().
		Run(func(mock.Arguments) { close(visitDone) })
	client.On("LikeProfile", mock.Anything, "p1", "Bonjour !").Return(&models.MatchOutcome{
		Action:  models.ActionMutualMatch,
		MatchID: "m9",
		Status:  models.MatchStatusAccepted,
	}, nil).Once()

	navigator := new(MockNavigator)
	navigator.On("Replace", "/profile/p1").Once()
	navigator.On("Push", "/conversations/m9").Once()

	loop := newTestLoop(client, navigator)
	require.NoError(t, loop.Init(context.Background()))

	outcome, err := loop.Like(context.Background(), "Bonjour !")
	require.NoError(t, err)
	assert.True(t, outcome.Mutual())

	// handoff: slot cleared, no next-candidate fetch
	current, _ := loop.Current()
	assert.Nil(t, current)
	client.AssertNumberOfCalls(t, "NextProfile", 1)
	navigator.AssertExpectations(t)

	select {
	case <-visitDone:
	case <-time.After(2 * time.Second):
		t.Fatal("visit was never recorded")
	}
}

func TestLikeSentAdvancesWithoutExtraVisit(t *testing.T) {
	visitDone := make(chan struct{})

	client := new(MockAPIClient)
	client.On("NextProfile", mock.Anything).Return(pageWith("p1", 3), nil).Once()
	client.On("RecordVisit", mock.Anything, "p1").Return(nil).Once().
		Run(func(mock.Arguments) { close(visitDone) })
	client.On("LikeProfile", mock.Anything, "p1", "Salut").Return(&models.MatchOutcome{
		Action: models.ActionLikeSent,
		Status: models.MatchStatusPending,
	}, nil).Once()
	client.On("NextProfile", mock.Anything).Return(pageWith("p2", 2), nil).Once()

	navigator := new(MockNavigator)
	navigator.On("Replace", mock.Anything)

	loop := newTestLoop(client, navigator)
	require.NoError(t, loop.Init(context.Background()))

	outcome, err := loop.Like(context.Background(), "Salut")
	require.NoError(t, err)
	assert.Equal(t, models.ActionLikeSent, outcome.Action)

	current, _ := loop.Current()
	require.NotNil(t, current)
	assert.Equal(t, "p2", current.ID)

	select {
	case <-visitDone:
	case <-time.After(2 * time.Second):
		t.Fatal("visit was never recorded")
	}

	// the advance after a like records no second visit
	client.AssertNumberOfCalls(t, "RecordVisit", 1)
	client.AssertNumberOfCalls(t, "LikeProfile", 1)
	client.AssertNumberOfCalls(t, "NextProfile", 2)
}

func TestLikeAlreadyLikedAdvances(t *testing.T) {
	client := new(MockAPIClient)
	client.On("NextProfile", mock.Anything).Return(pageWith("p1", 3), nil).Once()
	client.On("RecordVisit", mock.Anything, "p1").Return(nil).Maybe()
	client.On("LikeProfile", mock.Anything, "p1", "Re-bonjour").Return(&models.MatchOutcome{
		Action:  models.ActionAlreadyLiked,
		Message: "Like déjà envoyé",
	}, nil).Once()
	client.On("NextProfile", mock.Anything).Return(pageWith("p2", 2), nil).Once()

	navigator := new(MockNavigator)
	navigator.On("Replace", mock.Anything)

	loop := newTestLoop(client, navigator)
	require.NoError(t, loop.Init(context.Background()))

	outcome, err := loop.Like(context.Background(), "Re-bonjour")
	require.NoError(t, err)
	assert.Equal(t, models.ActionAlreadyLiked, outcome.Action)

	current, _ := loop.Current()
	assert.Equal(t, "p2", current.ID)
}

func TestLikeInvalidMessageNeverReachesBackend(t *testing.T) {
	client := new(MockAPIClient)
	client.On("NextProfile", mock.Anything).Return(pageWith("p1", 3), nil).Once()
	client.On("RecordVisit", mock.Anything, "p1").Return(nil).Maybe()

	navigator := new(MockNavigator)
	navigator.On("Replace", mock.Anything)

	loop := newTestLoop(client, navigator)
	require.NoError(t, loop.Init(context.Background()))

	_, err := loop.Like(context.Background(), "   ")
	assert.ErrorIs(t, err, errs.ErrInvalidInput)

	// candidate stays in the slot for a retry
	current, busy := loop.Current()
	require.NotNil(t, current)
	assert.Equal(t, "p1", current.ID)
	assert.False(t, busy)
	client.AssertNumberOfCalls(t, "LikeProfile", 0)
}

func TestLikeFailureKeepsCandidate(t *testing.T) {
	client := new(MockAPIClient)
	client.On("NextProfile", mock.Anything).Return(pageWith("p1", 3), nil).Once()
	client.On("RecordVisit", mock.Anything, "p1").Return(nil).Maybe()
	client.On("LikeProfile", mock.Anything, "p1", "Bonjour").Return(nil, errs.ErrServerError).Once()

	navigator := new(MockNavigator)
	navigator.On("Replace", mock.Anything)

	loop := newTestLoop(client, navigator)
	require.NoError(t, loop.Init(context.Background()))

	_, err := loop.Like(context.Background(), "Bonjour")
	assert.ErrorIs(t, err, errs.ErrServerError)

	current, busy := loop.Current()
	require.NotNil(t, current)
	assert.Equal(t, "p1", current.ID)
	assert.False(t, busy)
	client.AssertNumberOfCalls(t, "NextProfile", 1)
}

func TestHandleActionDispatch(t *testing.T) {
	client := new(MockAPIClient)
	client.On("NextProfile", mock.Anything).Return(pageWith("p1", 3), nil).Once()
	client.On("RecordVisit", mock.Anything, "p1").Return(nil).Once()
	client.On("NextProfile", mock.Anything).Return(pageWith("p2", 2), nil).Once()

	navigator := new(MockNavigator)
	navigator.On("Replace", mock.Anything)

	loop := newTestLoop(client, navigator)
	require.NoError(t, loop.Init(context.Background()))

	outcome, err := loop.HandleAction(context.Background(), input.ActionSkip, "")
	require.NoError(t, err)
	assert.Nil(t, outcome)

	current, _ := loop.Current()
	assert.Equal(t, "p2", current.ID)

	// unmapped input is a no-op
	outcome, err = loop.HandleAction(context.Background(), input.ActionNone, "")
	assert.NoError(t, err)
	assert.Nil(t, outcome)
	client.AssertNumberOfCalls(t, "NextProfile", 2)
}

func TestPreferencesServedFromCache(t *testing.T) {
	client := new(MockAPIClient)
	loop := newTestLoop(client, new(MockNavigator))

	for i := 0; i < 3; i++ {
		prefs, err := loop.Preferences(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "Marie", prefs.FirstName)
	}
	client.AssertNumberOfCalls(t, "GetMyProfile", 1)
}

func TestInitStoresCriteriaEcho(t *testing.T) {
	client := new(MockAPIClient)
	page := pageWith("p1", 3)
	page.SearchCriteria = savedCriteria()
	client.On("NextProfile", mock.Anything).Return(page, nil).Once()

	navigator := new(MockNavigator)
	navigator.On("Replace", mock.Anything)

	loop := newTestLoop(client, navigator)
	require.NoError(t, loop.Init(context.Background()))

	require.NotNil(t, loop.Criteria())
	assert.Equal(t, "Nantes", loop.Criteria().Locations[0].CityName)
}

func TestPendingCarriesTransition(t *testing.T) {
	hold := make(chan struct{})
	started := make(chan struct{})

	client := new(MockAPIClient)
	client.On("NextProfile", mock.Anything).Return(pageWith("p1", 3), nil).Once()
	client.On("RecordVisit", mock.Anything, "p1").Return(nil).Once().
		Run(func(mock.Arguments) {
			close(started)
			<-hold
		})
	client.On("NextProfile", mock.Anything).Return(emptyPage(), nil).Once()

	navigator := new(MockNavigator)
	navigator.On("Replace", mock.Anything)

	loop := newTestLoop(client, navigator)
	require.NoError(t, loop.Init(context.Background()))

	done := make(chan error, 1)
	go func() { done <- loop.Skip(context.Background()) }()

	<-started
	pending := loop.Pending()
	require.NotNil(t, pending)
	assert.Equal(t, input.ActionSkip, pending.Action)
	assert.Equal(t, "p1", pending.ProfileID)

	close(hold)
	require.NoError(t, <-done)
	assert.Nil(t, loop.Pending())
}
