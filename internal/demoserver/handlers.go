package demoserver

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	errs "github.com/educlove/discovery-engine/pkg/errors"
	"github.com/educlove/discovery-engine/pkg/jwt"
	"github.com/educlove/discovery-engine/pkg/logger"

	"github.com/educlove/discovery-engine/internal/middleware"
	"github.com/educlove/discovery-engine/internal/models"
)

// Handlers serves the demo API routes.
type Handlers struct {
	store  *Store
	tokens *jwt.TokenManager
}

func NewHandlers(store *Store, tokens *jwt.TokenManager) *Handlers {
	return &Handlers{store: store, tokens: tokens}
}

type tokenRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// IssueToken signs a session token for a seeded demo account. This stands in
// for the identity provider so the engine can be pointed at the demo server
// with nothing but an email.
func (h *Handlers) IssueToken(c *gin.Context) {
	var req tokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "A valid email is required"})
		return
	}

	user, err := h.store.Authenticate(req.Email)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Unknown demo account"})
		return
	}

	token, err := h.tokens.GenerateToken(user.Sub, user.Email, user.Name, user.EmailVerified)
	if err != nil {
		logger.Error("Token generation failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not issue token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// Session answers the lightweight gate probe. Reaching this handler means
// the bearer token was accepted, so authenticated is always true; a missing
// or bad token never gets past the auth middleware.
func (h *Handlers) Session(c *gin.Context) {
	info, err := h.store.SessionFor(h.subject(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
		return
	}
	c.JSON(http.StatusOK, models.SessionCheck{
		Authenticated:    true,
		Email:            info.Email,
		EmailVerified:    info.EmailVerified,
		ProfileCompleted: info.ProfileCompleted,
	})
}

// Me answers the full session lookup.
func (h *Handlers) Me(c *gin.Context) {
	sub := h.subject(c)
	info, err := h.store.SessionFor(sub)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "User not found"})
		return
	}
	c.JSON(http.StatusOK, info)
}

// MyProfile returns the authenticated user's profile.
func (h *Handlers) MyProfile(c *gin.Context) {
	profile, err := h.store.OwnProfile(h.subject(c))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Profile not found"})
		return
	}
	c.JSON(http.StatusOK, profile)
}

// GetSearchCriteria returns the saved criteria. A user who never saved any
// gets a null criteria field, not a 404.
func (h *Handlers) GetSearchCriteria(c *gin.Context) {
	criteria := h.store.Criteria(h.subject(c))
	envelope := models.CriteriaEnvelope{Criteria: criteria}
	if criteria == nil {
		envelope.Message = "No search criteria found"
	}
	c.JSON(http.StatusOK, envelope)
}

// SaveSearchCriteria creates or replaces the criteria record.
func (h *Handlers) SaveSearchCriteria(c *gin.Context) {
	var req models.SearchCriteriaRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}
	if req.AgeMin != nil && req.AgeMax != nil && *req.AgeMin > *req.AgeMax {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "age_min must not exceed age_max"})
		return
	}

	saved := h.store.SaveCriteria(h.subject(c), req)
	c.JSON(http.StatusOK, models.CriteriaEnvelope{
		Criteria:   saved,
		CriteriaID: "criteria-" + h.subject(c),
		Message:    "Critères enregistrés",
	})
}

// DeleteSearchCriteria removes the criteria record.
func (h *Handlers) DeleteSearchCriteria(c *gin.Context) {
	if !h.store.DeleteCriteria(h.subject(c)) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "No search criteria to delete"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Critères supprimés"})
}

// NextProfile serves the single-candidate discovery page.
func (h *Handlers) NextProfile(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.NextProfile(h.subject(c)))
}

// LikeProfile handles POST /profiles/{id}:like. Gin's router cannot carry
// the colon suffix in a route pattern, so the whole segment binds to :id and
// the suffix is stripped here; anything else under the segment is unknown.
func (h *Handlers) LikeProfile(c *gin.Context) {
	profileID, found := strings.CutSuffix(c.Param("id"), ":like")
	if !found || profileID == "" {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Unknown profile action"})
		return
	}

	var req models.LikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "message must be between 1 and 500 characters"})
		return
	}
	message := strings.TrimSpace(req.Message)
	if message == "" {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": "message must not be blank"})
		return
	}

	outcome, err := h.store.Like(h.subject(c), profileID, message)
	if err != nil {
		if errs.Is(err, errs.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Profile not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "Could not process like"})
		return
	}
	c.JSON(http.StatusOK, outcome)
}

// RecordVisit stores a profile visit.
func (h *Handlers) RecordVisit(c *gin.Context) {
	visit, err := h.store.RecordVisit(h.subject(c), c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Profile not found"})
		return
	}
	c.JSON(http.StatusOK, visit)
}

// Healthcheck reports liveness.
func (h *Handlers) Healthcheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handlers) subject(c *gin.Context) string {
	claims, ok := middleware.ClaimsFrom(c)
	if !ok {
		return ""
	}
	return claims.Subject
}
