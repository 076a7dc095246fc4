package demoserver

import "github.com/educlove/discovery-engine/internal/models"

// seed loads the demo accounts and candidate pool. The first account is the
// one the demo CLI signs in with; the unverified and profile-less accounts
// exist to exercise the onboarding gates.
func (s *Store) seed() {
	s.addUser(&DemoUser{
		Sub: "demo|marie", Email: "marie@educlove.fr", Name: "Marie",
		EmailVerified: true, ProfileCompleted: true,
	}, &models.OwnProfile{
		ID:               "own-marie",
		FirstName:        "Marie",
		Age:              32,
		Gender:           "femme",
		Location:         lyon(),
		LookingForGender: []string{"homme"},
		LookingFor:       "Relation sérieuse",
		Subject:          "Mathématiques",
		ExperienceYears:  8,
	})

	s.addUser(&DemoUser{
		Sub: "demo|jeanne", Email: "jeanne@educlove.fr", Name: "Jeanne",
		EmailVerified: false, ProfileCompleted: false,
	}, nil)

	s.addUser(&DemoUser{
		Sub: "demo|nicolas", Email: "nicolas@educlove.fr", Name: "Nicolas",
		EmailVerified: true, ProfileCompleted: false,
	}, nil)

	s.addCandidate("demo|thomas", models.CandidateProfile{
		ID: "cand-thomas", FirstName: "Thomas", Age: 34, Gender: "homme",
		Location: lyon(), LookingFor: "Relation sérieuse",
		Subject: "Histoire-Géographie", ExperienceYears: 10,
		Description: "Prof d'histoire passionné de randonnée.",
	})
	s.addCandidate("demo|julien", models.CandidateProfile{
		ID: "cand-julien", FirstName: "Julien", Age: 29, Gender: "homme",
		Location: villeurbanne(), LookingFor: "Relation sérieuse",
		Subject: "Physique-Chimie", ExperienceYears: 4,
		Description: "Entre deux TP, je cours les salles de concert.",
	})
	s.addCandidate("demo|antoine", models.CandidateProfile{
		ID: "cand-antoine", FirstName: "Antoine", Age: 38, Gender: "homme",
		Location: lyon(), LookingFor: "Amitié",
		Subject: "Lettres modernes", ExperienceYears: 14,
		Description: "Lecteur compulsif, correcteur patient.",
	})
	s.addCandidate("demo|sophie", models.CandidateProfile{
		ID: "cand-sophie", FirstName: "Sophie", Age: 31, Gender: "femme",
		Location: paris(), LookingFor: "Relation sérieuse",
		Subject: "Anglais", ExperienceYears: 7,
		Description: "Anglophile, toujours partante pour un café.",
	})
	s.addCandidate("demo|claire", models.CandidateProfile{
		ID: "cand-claire", FirstName: "Claire", Age: 27, Gender: "femme",
		Location: lyon(), LookingFor: "Relation sérieuse",
		Subject: "SVT", ExperienceYears: 3,
		Description: "Jeune prof de SVT, jardin partagé le week-end.",
	})
}

func (s *Store) addUser(user *DemoUser, profile *models.OwnProfile) {
	s.users[user.Sub] = user
	s.usersEmail[user.Email] = user
	if profile != nil {
		s.ownProfile[user.Sub] = profile
		// own profiles are likeable targets but never served as candidates
		s.owners[profile.ID] = user.Sub
	}
}

func (s *Store) addCandidate(ownerSub string, profile models.CandidateProfile) {
	user := &DemoUser{
		Sub: ownerSub, Email: ownerSub + "@educlove.fr", Name: profile.FirstName,
		EmailVerified: true, ProfileCompleted: true,
	}
	if _, exists := s.users[user.Sub]; !exists {
		s.users[user.Sub] = user
		s.usersEmail[user.Email] = user
	}
	s.candidates = append(s.candidates, profile)
	s.owners[profile.ID] = ownerSub
}

func lyon() models.Location {
	return models.Location{CityName: "Lyon", Coordinates: []float64{4.8357, 45.7640}}
}

func villeurbanne() models.Location {
	return models.Location{CityName: "Villeurbanne", Coordinates: []float64{4.8795, 45.7719}}
}

func paris() models.Location {
	return models.Location{CityName: "Paris", Coordinates: []float64{2.3522, 48.8566}}
}
