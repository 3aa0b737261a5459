package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nutricoach/backend/internal/nutrition"
	"github.com/nutricoach/backend/internal/service"
	"github.com/nutricoach/backend/internal/testdb"
	"github.com/nutricoach/backend/internal/types"
)

func ptr[T any](v T) *T { return &v }

func TestDietProfileService(t *testing.T) {
	ctx := context.Background()

	t.Run("should return an empty profile before the first update", func(t *testing.T) {
		svc := service.NewDietProfileService(testdb.SetupSQLite(t), nil)
		userID := uuid.New()

		profile, err := svc.GetDietProfile(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, userID, profile.UserID)
		assert.Equal(t, uuid.Nil, profile.ID)
		assert.Nil(t, profile.WeightKg)

		targets, err := svc.GetTargets(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, nutrition.DefaultDailyCalories, targets.DailyCalories)
		assert.False(t, targets.Personalized)
	})

	t.Run("should create then partially update", func(t *testing.T) {
		svc := service.NewDietProfileService(testdb.SetupSQLite(t), nil)
		userID := uuid.New()

		created, err := svc.UpdateDietProfile(ctx, userID, &types.UpdateDietProfileRequest{
			WeightKg: ptr(70.0),
			HeightCm: ptr(175.0),
			Age:      ptr(30),
			Goal:     ptr("lose weight"),
		})
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, created.ID)

		updated, err := svc.UpdateDietProfile(ctx, userID, &types.UpdateDietProfileRequest{DietType: ptr("veg")})
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, "veg", updated.DietType)
		assert.Equal(t, "lose weight", updated.Goal)
		assert.Equal(t, 70.0, *updated.WeightKg)

		targets, err := svc.GetTargets(ctx, userID)
		require.NoError(t, err)
		assert.True(t, targets.Personalized)
		assert.Equal(t, 2056, targets.DailyCalories)
		assert.Equal(t, 180, targets.ProteinG)
	})
}
