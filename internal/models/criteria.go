package models

// SearchCriteria is the saved filter controlling which candidates the server
// may serve. Absence of a record is a meaningful state (the guard redirects
// to the editor); a saved record with empty fields is valid.
type SearchCriteria struct {
	UserID    string     `json:"user_id,omitempty"`
	Locations []Location `json:"locations"`
	Radii     []int      `json:"radii"`
	AgeMin    *int       `json:"age_min,omitempty"`
	AgeMax    *int       `json:"age_max,omitempty"`
	Gender    []string   `json:"gender,omitempty"`
	Subjects  []string   `json:"subjects,omitempty"`
}

// SearchCriteriaRequest is the save/update payload. Radii align with
// locations by index; up to three locations may be configured.
type SearchCriteriaRequest struct {
	Locations []Location `json:"locations" binding:"omitempty,max=3,dive" validate:"omitempty,max=3,dive"`
	Radii     []int      `json:"radii" binding:"omitempty,max=3,dive,gt=0" validate:"omitempty,max=3,dive,gt=0"`
	AgeMin    *int       `json:"age_min,omitempty" binding:"omitempty,gte=18" validate:"omitempty,gte=18"`
	AgeMax    *int       `json:"age_max,omitempty" binding:"omitempty,lte=100" validate:"omitempty,lte=100"`
	Gender    []string   `json:"gender,omitempty" binding:"omitempty,dive,max=30" validate:"omitempty,dive,max=30"`
	Subjects  []string   `json:"subjects" binding:"omitempty,dive,max=100" validate:"omitempty,dive,max=100"`
}

// CriteriaEnvelope is the response of GET /profiles/my-profile/search-criteria.
// Criteria stays nil when no record has ever been saved.
type CriteriaEnvelope struct {
	Criteria   *SearchCriteria `json:"criteria"`
	CriteriaID string          `json:"criteria_id,omitempty"`
	Message    string          `json:"message,omitempty"`
}
