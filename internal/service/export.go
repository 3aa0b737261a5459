package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nutricoach/backend/internal/logging"
	"github.com/nutricoach/backend/internal/types"
)

const exportURLTTL = 15 * time.Minute

// PlanExporter uploads plans as JSON documents and hands out short-lived
// download links
type PlanExporter struct {
	store  ObjectStore
	plans  IPlanService
	logger *zap.Logger
	now    func() time.Time
}

var _ IPlanExporter = (*PlanExporter)(nil)

// NewPlanExporter creates a PlanExporter. A nil store disables export.
func NewPlanExporter(store ObjectStore, plans IPlanService, logger *zap.Logger) *PlanExporter {
	return &PlanExporter{
		store:  store,
		plans:  plans,
		logger: logging.OrNop(logger),
		now:    time.Now,
	}
}

func exportKey(userID, planID uuid.UUID) string {
	return fmt.Sprintf("plans/%s/%s.json", userID, planID)
}

func (e *PlanExporter) Export(ctx context.Context, userID, planID uuid.UUID) (*types.ExportResponse, error) {
	if e.store == nil {
		return nil, ErrExportDisabled
	}

	plan, err := e.plans.GetPlan(ctx, userID, planID)
	if err != nil {
		return nil, err
	}

	body, err := json.MarshalIndent(plan.Data(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal plan: %w", err)
	}

	key := exportKey(userID, planID)
	if err := e.store.PutJSON(ctx, key, body); err != nil {
		return nil, fmt.Errorf("failed to export plan: %w", err)
	}

	url, err := e.store.GeneratePresignedURL(ctx, key, exportURLTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate presigned URL: %w", err)
	}

	e.logger.Info("plan exported", zap.String("user_id", userID.String()), zap.String("key", key))
	return &types.ExportResponse{
		URL:       url,
		Key:       key,
		ExpiresAt: e.now().Add(exportURLTTL),
	}, nil
}
