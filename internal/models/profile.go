package models

// Location holds a place name and GPS coordinates as [longitude, latitude].
type Location struct {
	CityName    string    `json:"city_name" binding:"required,min=1,max=100" validate:"required,min=1,max=100"`
	Coordinates []float64 `json:"coordinates" binding:"required,len=2" validate:"required,len=2"`
}

// Longitude returns the first coordinate, or 0 when unset.
func (l Location) Longitude() float64 {
	if len(l.Coordinates) < 2 {
		return 0
	}
	return l.Coordinates[0]
}

// Latitude returns the second coordinate, or 0 when unset.
func (l Location) Latitude() float64 {
	if len(l.Coordinates) < 2 {
		return 0
	}
	return l.Coordinates[1]
}

// CandidateProfile is a single profile offered to the user for a like/skip
// decision. Age is computed server-side; the client never derives it from a
// date of birth, so filtering and display can't drift apart.
type CandidateProfile struct {
	ID              string   `json:"_id"`
	FirstName       string   `json:"first_name"`
	Age             int      `json:"age"`
	Gender          string   `json:"gender,omitempty"`
	Location        Location `json:"location"`
	LookingFor      string   `json:"looking_for,omitempty"`
	Subject         string   `json:"subject,omitempty"`
	ExperienceYears int      `json:"experience_years,omitempty"`
	Photos          []string `json:"photos,omitempty"`
	Description     string   `json:"description,omitempty"`
	Goals           string   `json:"goals,omitempty"`
}

// OwnProfile is the authenticated user's profile. The engine only consumes
// the looking-for-gender preferences for the filter summary bar; the rest is
// carried for the demo server.
type OwnProfile struct {
	ID               string   `json:"_id,omitempty"`
	FirstName        string   `json:"first_name"`
	Age              int      `json:"age,omitempty"`
	Gender           string   `json:"gender,omitempty"`
	Location         Location `json:"location"`
	LookingForGender []string `json:"looking_for_gender,omitempty"`
	LookingFor       string   `json:"looking_for,omitempty"`
	Subject          string   `json:"subject,omitempty"`
	ExperienceYears  int      `json:"experience_years,omitempty"`
	Photos           []string `json:"photos,omitempty"`
	Description      string   `json:"description,omitempty"`
	Goals            string   `json:"goals,omitempty"`
	Email            string   `json:"email,omitempty"`
}

// ProfilePage is the envelope of GET /profiles/: zero or one candidate in
// single-serve mode, plus the server's echo of the active criteria.
type ProfilePage struct {
	Profiles       []CandidateProfile `json:"profiles"`
	Total          int                `json:"total"`
	SearchCriteria *SearchCriteria    `json:"search_criteria,omitempty"`
	Message        string             `json:"message,omitempty"`
}

// First returns the single served candidate, or nil when the pool is
// exhausted.
func (p *ProfilePage) First() *CandidateProfile {
	if len(p.Profiles) == 0 {
		return nil
	}
	return &p.Profiles[0]
}
