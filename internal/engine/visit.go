package engine

import (
	"context"

	"go.uber.org/zap"

	"github.com/educlove/discovery-engine/pkg/logger"
	"github.com/educlove/discovery-engine/pkg/metrics"

	"github.com/educlove/discovery-engine/internal/api"
)

// VisitRecorder reports profile views to the backend so served candidates
// are excluded from future serves. Recording is pure telemetry: a failure is
// logged and counted but never surfaces to the user or blocks a transition.
type VisitRecorder struct {
	api api.Client
}

func NewVisitRecorder(client api.Client) *VisitRecorder {
	return &VisitRecorder{api: client}
}

// Record reports one visit and waits for the call to settle. The skip path
// uses this so the just-skipped profile is excluded before the next fetch.
func (v *VisitRecorder) Record(ctx context.Context, profileID string) {
	if err := v.api.RecordVisit(ctx, profileID); err != nil {
		metrics.VisitRecords.WithLabelValues("error").Inc()
		logger.Warn("Visit recording failed",
			zap.String("profile_id", profileID),
			zap.Error(err))
		return
	}
	metrics.VisitRecords.WithLabelValues("success").Inc()
}

// RecordAsync reports one visit without gating the caller. The like path
// uses this at submission time. The call is detached from the caller's
// cancellation so an unmount mid-submission doesn't drop the visit.
func (v *VisitRecorder) RecordAsync(ctx context.Context, profileID string) {
	go v.Record(context.WithoutCancel(ctx), profileID)
}
