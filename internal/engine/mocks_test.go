package engine

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/educlove/discovery-engine/internal/models"
)

// MockAPIClient is a testify mock of api.Client.
type MockAPIClient struct {
	mock.Mock
}

func (m *MockAPIClient) GetSession(ctx context.Context) (*models.Session, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockAPIClient) GetMyProfile(ctx context.Context) (*models.OwnProfile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.OwnProfile), args.Error(1)
}

func (m *MockAPIClient) GetSearchCriteria(ctx context.Context) (*models.SearchCriteria, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SearchCriteria), args.Error(1)
}

func (m *MockAPIClient) SaveSearchCriteria(ctx context.Context, req models.SearchCriteriaRequest) (*models.SearchCriteria, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SearchCriteria), args.Error(1)
}

func (m *MockAPIClient) DeleteSearchCriteria(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockAPIClient) NextProfile(ctx context.Context) (*models.ProfilePage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ProfilePage), args.Error(1)
}

func (m *MockAPIClient) LikeProfile(ctx context.Context, profileID, message string) (*models.MatchOutcome, error) {
	args := m.Called(ctx, profileID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.MatchOutcome), args.Error(1)
}

func (m *MockAPIClient) RecordVisit(ctx context.Context, profileID string) error {
	args := m.Called(ctx, profileID)
	return args.Error(0)
}

// MockNavigator is a testify mock of nav.Navigator.
type MockNavigator struct {
	mock.Mock
}

func (m *MockNavigator) Push(route string) {
	m.Called(route)
}

func (m *MockNavigator) Replace(route string) {
	m.Called(route)
}

// pageWith builds a single-candidate page.
func pageWith(id string, total int) *models.ProfilePage {
	return &models.ProfilePage{
		Profiles: []models.CandidateProfile{{ID: id, FirstName: "Test", Age: 30}},
		Total:    total,
	}
}

// emptyPage builds an exhausted-pool page.
func emptyPage() *models.ProfilePage {
	return &models.ProfilePage{
		Profiles: []models.CandidateProfile{},
		Total:    0,
		Message:  "Vous avez vu tous les profils correspondant à vos critères",
	}
}
