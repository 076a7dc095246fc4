// Package demoserver is a self-contained EducLove backend for demos and
// integration tests. It serves the same routes and response shapes as the
// production API from seeded in-memory data, so the engine can run end to
// end without credentials.
package demoserver

import (
	"fmt"
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	errs "github.com/educlove/discovery-engine/pkg/errors"

	"github.com/educlove/discovery-engine/internal/models"
)

// DemoUser is a seeded account.
type DemoUser struct {
	Sub              string
	Email            string
	Name             string
	EmailVerified    bool
	ProfileCompleted bool
}

type likeRecord struct {
	MatchID string
	Message string
}

type matchRecord struct {
	ID     string
	Liker  string
	Target string
	Status string
}

// Store holds all demo state. Visits live in an expiring cache so a profile
// becomes servable again once its visit record ages out, matching the
// production backend's 30-day retention.
type Store struct {
	mu         sync.RWMutex
	users      map[string]*DemoUser
	usersEmail map[string]*DemoUser
	candidates []models.CandidateProfile
	owners     map[string]string // candidate profile ID -> owner sub
	ownProfile map[string]*models.OwnProfile
	criteria   map[string]*models.SearchCriteria
	likes      map[string]map[string]*likeRecord // liker sub -> target profile ID
	matches    map[string]*matchRecord
	visits     *cache.Cache
	rng        *rand.Rand
	nextID     int
}

// NewStore creates a store seeded with demo teachers. visitTTL controls how
// long a visit hides a profile from discovery.
func NewStore(visitTTL time.Duration) *Store {
	s := &Store{
		users:      make(map[string]*DemoUser),
		usersEmail: make(map[string]*DemoUser),
		owners:     make(map[string]string),
		ownProfile: make(map[string]*models.OwnProfile),
		criteria:   make(map[string]*models.SearchCriteria),
		likes:      make(map[string]map[string]*likeRecord),
		matches:    make(map[string]*matchRecord),
		visits:     cache.New(visitTTL, 10*time.Minute),
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	s.seed()
	return s
}

// Authenticate resolves a seeded account by email.
func (s *Store) Authenticate(email string) (*DemoUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.usersEmail[email]
	if !ok {
		return nil, errs.NotFoundError("user")
	}
	return user, nil
}

// SessionFor builds the /auth/me response for a user.
func (s *Store) SessionFor(sub string) (*models.SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[sub]
	if !ok {
		return nil, errs.NotFoundError("user")
	}
	info := &models.SessionInfo{
		UserID:           user.Sub,
		Sub:              user.Sub,
		Email:            user.Email,
		Name:             user.Name,
		Provider:         "demo",
		EmailVerified:    user.EmailVerified,
		ProfileCompleted: user.ProfileCompleted,
	}
	if profile, ok := s.ownProfile[sub]; ok {
		info.HasProfile = true
		info.ProfileID = profile.ID
	}
	return info, nil
}

// OwnProfile returns the user's profile.
func (s *Store) OwnProfile(sub string) (*models.OwnProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.ownProfile[sub]
	if !ok {
		return nil, errs.NotFoundError("profile")
	}
	return profile, nil
}

// Criteria returns the saved criteria, nil when never saved.
func (s *Store) Criteria(sub string) *models.SearchCriteria {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.criteria[sub]
}

// SaveCriteria creates or replaces the user's criteria.
func (s *Store) SaveCriteria(sub string, req models.SearchCriteriaRequest) *models.SearchCriteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	saved := &models.SearchCriteria{
		UserID:    sub,
		Locations: req.Locations,
		Radii:     req.Radii,
		AgeMin:    req.AgeMin,
		AgeMax:    req.AgeMax,
		Gender:    req.Gender,
		Subjects:  req.Subjects,
	}
	s.criteria[sub] = saved
	return saved
}

// DeleteCriteria removes the criteria record, reporting whether one existed.
func (s *Store) DeleteCriteria(sub string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, existed := s.criteria[sub]
	delete(s.criteria, sub)
	return existed
}

// NextProfile serves one random unvisited candidate matching the user's
// criteria, in single-serve mode.
func (s *Store) NextProfile(sub string) *models.ProfilePage {
	s.mu.RLock()
	defer s.mu.RUnlock()

	criteria := s.criteria[sub]
	if criteria == nil {
		return &models.ProfilePage{
			Profiles: []models.CandidateProfile{},
			Message:  "Veuillez définir vos critères de recherche",
		}
	}

	var pool []models.CandidateProfile
	for _, candidate := range s.candidates {
		if s.owners[candidate.ID] == sub {
			continue
		}
		if !matchesCriteria(candidate, criteria) {
			continue
		}
		if _, visited := s.visits.Get(visitKey(sub, candidate.ID)); visited {
			continue
		}
		pool = append(pool, candidate)
	}

	page := &models.ProfilePage{
		Profiles:       []models.CandidateProfile{},
		Total:          len(pool),
		SearchCriteria: criteria,
	}
	if len(pool) == 0 {
		page.Message = "Vous avez vu tous les profils correspondant à vos critères"
		return page
	}

	page.Profiles = []models.CandidateProfile{pool[s.rng.Intn(len(pool))]}
	return page
}

// Like applies a like from sub to a candidate profile. A reciprocal pending
// like is accepted into a mutual match; a repeat like is acknowledged
// without side effects.
func (s *Store) Like(sub, profileID, message string) (*models.MatchOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	targetSub, ok := s.owners[profileID]
	if !ok {
		return nil, errs.NotFoundError("profile")
	}

	if existing := s.likes[sub][profileID]; existing != nil {
		return &models.MatchOutcome{
			Action:  models.ActionAlreadyLiked,
			MatchID: existing.MatchID,
			Status:  s.matches[existing.MatchID].Status,
			Message: "Like déjà envoyé",
		}, nil
	}

	// reciprocal like: the target already liked one of sub's profiles
	if reverse := s.pendingLikeFrom(targetSub, sub); reverse != nil {
		match := s.matches[reverse.MatchID]
		match.Status = models.MatchStatusAccepted
		s.recordLike(sub, profileID, reverse.MatchID, message)
		return &models.MatchOutcome{
			Action:  models.ActionMutualMatch,
			MatchID: match.ID,
			Status:  match.Status,
			Message: "C'est un match !",
		}, nil
	}

	s.nextID++
	matchID := fmt.Sprintf("match-%d", s.nextID)
	s.matches[matchID] = &matchRecord{
		ID:     matchID,
		Liker:  sub,
		Target: targetSub,
		Status: models.MatchStatusPending,
	}
	s.recordLike(sub, profileID, matchID, message)

	return &models.MatchOutcome{
		Action:  models.ActionLikeSent,
		MatchID: matchID,
		Status:  models.MatchStatusPending,
		Message: "Like envoyé",
	}, nil
}

// RecordVisit stores a visit with the configured retention.
func (s *Store) RecordVisit(sub, profileID string) (*models.VisitResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.owners[profileID]; !ok {
		return nil, errs.NotFoundError("profile")
	}

	s.nextID++
	visitID := fmt.Sprintf("visit-%d", s.nextID)
	s.visits.SetDefault(visitKey(sub, profileID), visitID)

	return &models.VisitResponse{
		Message:          "Visite enregistrée",
		VisitID:          visitID,
		UserID:           sub,
		VisitedProfileID: profileID,
	}, nil
}

func (s *Store) recordLike(sub, profileID, matchID, message string) {
	if s.likes[sub] == nil {
		s.likes[sub] = make(map[string]*likeRecord)
	}
	s.likes[sub][profileID] = &likeRecord{MatchID: matchID, Message: message}
}

// pendingLikeFrom finds a pending like from liker on any profile owned by
// targetOwner.
func (s *Store) pendingLikeFrom(liker, targetOwner string) *likeRecord {
	for profileID, like := range s.likes[liker] {
		if s.owners[profileID] != targetOwner {
			continue
		}
		if s.matches[like.MatchID].Status == models.MatchStatusPending {
			return like
		}
	}
	return nil
}

func visitKey(sub, profileID string) string {
	return sub + "|" + profileID
}

func matchesCriteria(candidate models.CandidateProfile, criteria *models.SearchCriteria) bool {
	if criteria.AgeMin != nil && candidate.Age < *criteria.AgeMin {
		return false
	}
	if criteria.AgeMax != nil && candidate.Age > *criteria.AgeMax {
		return false
	}
	if len(criteria.Gender) > 0 && !contains(criteria.Gender, candidate.Gender) {
		return false
	}
	if len(criteria.Subjects) > 0 && !contains(criteria.Subjects, candidate.Subject) {
		return false
	}
	if len(criteria.Locations) == 0 {
		return true
	}
	for i, location := range criteria.Locations {
		radiusKm := 50.0
		if i < len(criteria.Radii) {
			radiusKm = float64(criteria.Radii[i])
		}
		distance := haversineKm(
			location.Latitude(), location.Longitude(),
			candidate.Location.Latitude(), candidate.Location.Longitude(),
		)
		if distance <= radiusKm {
			return true
		}
	}
	return false
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}

// haversineKm computes the great-circle distance between two points.
func haversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadiusKm = 6371.0
	rad := math.Pi / 180.0

	dLat := (lat2 - lat1) * rad
	dLon := (lon2 - lon1) * rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
