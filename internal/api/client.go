// Package api is the typed client for the EducLove backend. All engine
// modules talk to the backend through the Client interface so tests can swap
// in mocks and the demo CLI can point at the bundled demo server.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	errs "github.com/educlove/discovery-engine/pkg/errors"
	"github.com/educlove/discovery-engine/pkg/httpclient"
	"github.com/educlove/discovery-engine/pkg/logger"
	"github.com/educlove/discovery-engine/pkg/metrics"

	"github.com/educlove/discovery-engine/internal/models"
)

// Client is the backend surface the engine depends on.
type Client interface {
	// GetSession returns the current session facts. A missing or expired
	// credential surfaces as ErrUnauthorized, never as a zero Session.
	GetSession(ctx context.Context) (*models.Session, error)

	// GetMyProfile returns the authenticated user's own profile.
	GetMyProfile(ctx context.Context) (*models.OwnProfile, error)

	// GetSearchCriteria returns the saved criteria, or (nil, nil) when the
	// user has never saved any.
	GetSearchCriteria(ctx context.Context) (*models.SearchCriteria, error)

	// SaveSearchCriteria creates or replaces the saved criteria.
	SaveSearchCriteria(ctx context.Context, req models.SearchCriteriaRequest) (*models.SearchCriteria, error)

	// DeleteSearchCriteria removes the saved criteria record.
	DeleteSearchCriteria(ctx context.Context) error

	// NextProfile asks the backend for the next unvisited candidate.
	NextProfile(ctx context.Context) (*models.ProfilePage, error)

	// LikeProfile submits a like with its message and returns the server's
	// verdict.
	LikeProfile(ctx context.Context, profileID, message string) (*models.MatchOutcome, error)

	// RecordVisit marks a profile as seen so it is excluded from future
	// serves.
	RecordVisit(ctx context.Context, profileID string) error
}

const serviceName = "educlove-api"

// HTTPClient implements Client over the REST backend.
type HTTPClient struct {
	baseURL string
	token   string
	http    httpclient.Client
}

// NewHTTPClient creates a backend client. The token is sent as a bearer
// credential on every request.
func NewHTTPClient(baseURL, token string, hc httpclient.Client) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    hc,
	}
}

func (c *HTTPClient) GetSession(ctx context.Context) (*models.Session, error) {
	var check models.SessionCheck
	if err := c.doJSON(ctx, "get_session", http.MethodGet, "/auth/session", nil, &check); err != nil {
		return nil, err
	}
	session := check.Session()
	return &session, nil
}

func (c *HTTPClient) GetMyProfile(ctx context.Context) (*models.OwnProfile, error) {
	var profile models.OwnProfile
	if err := c.doJSON(ctx, "get_my_profile", http.MethodGet, "/profiles/my-profile", nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (c *HTTPClient) GetSearchCriteria(ctx context.Context) (*models.SearchCriteria, error) {
	var envelope models.CriteriaEnvelope
	if err := c.doJSON(ctx, "get_search_criteria", http.MethodGet, "/profiles/my-profile/search-criteria", nil, &envelope); err != nil {
		return nil, err
	}
	// criteria is null when no record was ever saved
	return envelope.Criteria, nil
}

func (c *HTTPClient) SaveSearchCriteria(ctx context.Context, req models.SearchCriteriaRequest) (*models.SearchCriteria, error) {
	var envelope models.CriteriaEnvelope
	if err := c.doJSON(ctx, "save_search_criteria", http.MethodPost, "/profiles/my-profile/search-criteria", req, &envelope); err != nil {
		return nil, err
	}
	return envelope.Criteria, nil
}

func (c *HTTPClient) DeleteSearchCriteria(ctx context.Context) error {
	return c.doJSON(ctx, "delete_search_criteria", http.MethodDelete, "/profiles/my-profile/search-criteria", nil, nil)
}

func (c *HTTPClient) NextProfile(ctx context.Context) (*models.ProfilePage, error) {
	var page models.ProfilePage
	if err := c.doJSON(ctx, "next_profile", http.MethodGet, "/profiles/", nil, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

func (c *HTTPClient) LikeProfile(ctx context.Context, profileID, message string) (*models.MatchOutcome, error) {
	var outcome models.MatchOutcome
	path := fmt.Sprintf("/profiles/%s:like", profileID)
	if err := c.doJSON(ctx, "like_profile", http.MethodPost, path, models.LikeRequest{Message: message}, &outcome); err != nil {
		return nil, err
	}
	return &outcome, nil
}

func (c *HTTPClient) RecordVisit(ctx context.Context, profileID string) error {
	path := fmt.Sprintf("/api/profile-visits/%s", profileID)
	return c.doJSON(ctx, "record_visit", http.MethodPost, path, nil, nil)
}

// apiError is the backend's error envelope.
type apiError struct {
	Detail string `json:"detail"`
}

// doJSON performs one instrumented request. out may be nil when the caller
// only needs the status.
func (c *HTTPClient) doJSON(ctx context.Context, operation, method, path string, body, out any) error {
	start := time.Now()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode %s request: %w", operation, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to build %s request: %w", operation, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(operation, "error", start)
		return fmt.Errorf("%s request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		c.observe(operation, "error", start)
		return c.mapError(operation, resp)
	}

	c.observe(operation, "success", start)

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", operation, err)
	}
	return nil
}

func (c *HTTPClient) mapError(operation string, resp *http.Response) error {
	var detail apiError
	if raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil {
		_ = json.Unmarshal(raw, &detail)
	}

	logger.Warn("Backend returned error",
		zap.String("operation", operation),
		zap.Int("status", resp.StatusCode),
		zap.String("detail", detail.Detail),
	)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return errs.UnauthorizedError(detail.Detail)
	case resp.StatusCode == http.StatusNotFound:
		if detail.Detail != "" {
			return fmt.Errorf("%s: %w", detail.Detail, errs.ErrNotFound)
		}
		return errs.NotFoundError(operation)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return errs.InvalidInputError(operation, detail.Detail)
	case resp.StatusCode >= 500:
		return errs.ServerError(fmt.Sprintf("%s returned %d", operation, resp.StatusCode))
	default:
		return fmt.Errorf("%s returned unexpected status %d", operation, resp.StatusCode)
	}
}

func (c *HTTPClient) observe(operation, status string, start time.Time) {
	duration := metrics.MeasureDuration(start)
	metrics.APIRequestDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.APIRequestTotal.WithLabelValues(operation, status).Inc()
	logger.LogAPICall(serviceName, operation, status, duration)
}
