package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	errs "github.com/educlove/discovery-engine/pkg/errors"

	"github.com/educlove/discovery-engine/internal/models"
)

func TestSubmitLikeTrimsMessage(t *testing.T) {
	client := new(MockAPIClient)
	client.On("LikeProfile", mock.Anything, "p1", "Bonjour").Return(&models.MatchOutcome{
		Action: models.ActionLikeSent,
	}, nil).Once()

	resolver := NewMatchResolver(client)
	outcome, err := resolver.SubmitLike(context.Background(), "p1", "  Bonjour  ")

	require.NoError(t, err)
	assert.Equal(t, models.ActionLikeSent, outcome.Action)
	client.AssertExpectations(t)
}

func TestSubmitLikeMessageValidation(t *testing.T) {
	tests := []struct {
		name    string
		message string
		valid   bool
	}{
		{name: "empty", message: "", valid: false},
		{name: "whitespace only", message: "   \n\t ", valid: false},
		{name: "single character", message: "a", valid: true},
		{name: "exactly 500 characters", message: strings.Repeat("x", 500), valid: true},
		{name: "over 500 characters", message: strings.Repeat("x", 501), valid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(MockAPIClient)
			if tt.valid {
				client.On("LikeProfile", mock.Anything, "p1", mock.Anything).Return(&models.MatchOutcome{
					Action: models.ActionLikeSent,
				}, nil).Once()
			}

			resolver := NewMatchResolver(client)
			_, err := resolver.SubmitLike(context.Background(), "p1", tt.message)

			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, errs.ErrInvalidInput)
				client.AssertNumberOfCalls(t, "LikeProfile", 0)
			}
		})
	}
}

func TestSubmitLikePropagatesBackendError(t *testing.T) {
	client := new(MockAPIClient)
	client.On("LikeProfile", mock.Anything, "p1", "Bonjour").Return(nil, errs.ErrServerError).Once()

	resolver := NewMatchResolver(client)
	outcome, err := resolver.SubmitLike(context.Background(), "p1", "Bonjour")

	assert.Nil(t, outcome)
	assert.ErrorIs(t, err, errs.ErrServerError)
}
