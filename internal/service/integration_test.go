package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutricoach/backend/internal/service"
	"github.com/nutricoach/backend/internal/testdb"
	"github.com/nutricoach/backend/internal/types"
)

func TestPostgresPlanFlow(t *testing.T) {
	tdb := testdb.SetupTestDB(t)
	ctx := context.Background()

	auth := service.NewAuthService(tdb.DB, tdb.Config.JWTSecret, nil)
	profiles := service.NewDietProfileService(tdb.DB, nil)
	plans := service.NewPlanService(tdb.DB, nil, nil, profiles, nil)

	reg, err := auth.Register(ctx, &types.RegisterRequest{Name: "Pat", Email: "pat@example.com", Password: "password123"})
	require.NoError(t, err)
	userID := reg.User.ID

	_, err = profiles.UpdateDietProfile(ctx, userID, &types.UpdateDietProfileRequest{
		WeightKg: ptr(82.0), HeightCm: ptr(180.0), Age: ptr(45), Goal: ptr("keto"), DietType: ptr("keto"),
	})
	require.NoError(t, err)

	generated, err := plans.GeneratePlan(ctx, userID, &types.GeneratePlanRequest{Seed: ptr(uint64(5))})
	require.NoError(t, err)
	assert.True(t, generated.IsPersonalized)

	latest, err := plans.LatestPlan(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, generated.ID, latest.ID)
	assert.Equal(t, generated.Data(), latest.Data())

	list, err := plans.ListPlans(ctx, userID, 10)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
