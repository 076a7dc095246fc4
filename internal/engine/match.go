package engine

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	errs "github.com/educlove/discovery-engine/pkg/errors"
	"github.com/educlove/discovery-engine/pkg/logger"
	"github.com/educlove/discovery-engine/pkg/metrics"

	"github.com/educlove/discovery-engine/internal/api"
	"github.com/educlove/discovery-engine/internal/models"
)

// MatchResolver submits likes and interprets the server's verdict. The
// message is mandatory: EducLove has no empty likes, every like opens with
// words.
type MatchResolver struct {
	api      api.Client
	validate *validator.Validate
}

func NewMatchResolver(client api.Client) *MatchResolver {
	return &MatchResolver{
		api:      client,
		validate: validator.New(),
	}
}

// SubmitLike sends a like with its message. The message is trimmed and
// checked locally before any network call; a whitespace-only or over-length
// message never leaves the client.
func (r *MatchResolver) SubmitLike(ctx context.Context, profileID, message string) (*models.MatchOutcome, error) {
	message = strings.TrimSpace(message)

	req := models.LikeRequest{Message: message}
	if err := r.validate.Struct(req); err != nil {
		return nil, errs.InvalidInputError("message",
			"must be between 1 and 500 characters")
	}

	outcome, err := r.api.LikeProfile(ctx, profileID, message)
	if err != nil {
		logger.LogError(err, "Like submission failed",
			zap.String("profile_id", profileID))
		return nil, err
	}

	metrics.MatchOutcomes.WithLabelValues(outcome.Action).Inc()
	logger.Info("Like resolved",
		zap.String("profile_id", profileID),
		zap.String("action", outcome.Action),
		zap.String("match_id", outcome.MatchID))

	return outcome, nil
}
