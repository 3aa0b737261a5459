package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/nutricoach/backend/internal/mocks"
	"github.com/nutricoach/backend/internal/models"
	"github.com/nutricoach/backend/internal/nutrition"
	"github.com/nutricoach/backend/internal/service"
	"github.com/nutricoach/backend/internal/testdb"
	"github.com/nutricoach/backend/internal/types"
)

const testToken = "good-token"

type testEnv struct {
	router   *gin.Engine
	userID   uuid.UUID
	auth     *mocks.MockAuthService
	profiles *mocks.MockDietProfileService
	plans    *mocks.MockPlanService
	chat     *mocks.MockChatService
	exporter *mocks.MockPlanExporter
}

func setupRouter(t *testing.T, withExporter bool) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		router:   gin.New(),
		userID:   uuid.New(),
		auth:     new(mocks.MockAuthService),
		profiles: new(mocks.MockDietProfileService),
		plans:    new(mocks.MockPlanService),
		chat:     new(mocks.MockChatService),
		exporter: new(mocks.MockPlanExporter),
	}
	env.auth.On("ValidateToken", testToken).Return(&types.TokenClaims{UserID: env.userID, Email: "coach@test.dev"}, nil)
	env.auth.On("ValidateToken", mock.Anything).Return(nil, service.ErrInvalidToken)

	deps := Dependencies{
		Auth:     env.auth,
		Profiles: env.profiles,
		Plans:    env.plans,
		Chat:     env.chat,
	}
	if withExporter {
		deps.Exporter = env.exporter
	}
	RegisterRoutes(env.router, deps)
	return env
}

func (e *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testToken)
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func samplePlan(userID uuid.UUID) *models.DietPlan {
	plan := models.NewDietPlan(userID, models.PlanSourceEngine, nutrition.DietPlanData{
		DailyCalories: 2056,
		Days:          []nutrition.DietDay{{Day: "Monday"}},
	})
	plan.ID = uuid.New()
	return plan
}

func TestHealth(t *testing.T) {
	t.Run("should report healthy without a database", func(t *testing.T) {
		env := setupRouter(t, false)
		w := env.do(http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "healthy")
	})

	t.Run("should ping the database", func(t *testing.T) {
		db := testdb.SetupSQLite(t)
		r := gin.New()
		r.GET("/health", HealthHandler(db))

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestAuthHandler(t *testing.T) {
	t.Run("should register a user", func(t *testing.T) {
		env := setupRouter(t, false)
		env.auth.On("Register", mock.Anything, mock.MatchedBy(func(req *types.RegisterRequest) bool {
			return req.Email == "new@test.dev" && req.Name == "New"
		})).Return(&types.AuthResponse{Token: "jwt", User: &models.User{Email: "new@test.dev"}}, nil)

		w := env.do(http.MethodPost, "/api/v1/auth/register", gin.H{"name": "New", "email": "new@test.dev", "password": "longenough"})
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"token":"jwt"`)
	})

	t.Run("should reject short passwords", func(t *testing.T) {
		env := setupRouter(t, false)
		w := env.do(http.MethodPost, "/api/v1/auth/register", gin.H{"name": "New", "email": "new@test.dev", "password": "short"})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		env.auth.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("should map duplicate emails to 409", func(t *testing.T) {
		env := setupRouter(t, false)
		env.auth.On("Register", mock.Anything, mock.Anything).Return(nil, service.ErrUserExists)

		w := env.do(http.MethodPost, "/api/v1/auth/register", gin.H{"name": "New", "email": "dup@test.dev", "password": "longenough"})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("should map bad credentials to 401", func(t *testing.T) {
		env := setupRouter(t, false)
		env.auth.On("Login", mock.Anything, mock.Anything).Return(nil, service.ErrInvalidCredentials)

		w := env.do(http.MethodPost, "/api/v1/auth/login", gin.H{"email": "a@test.dev", "password": "wrong"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("should return the current user", func(t *testing.T) {
		env := setupRouter(t, false)
		env.auth.On("GetUserByID", mock.Anything, env.userID).Return(&models.User{ID: env.userID, Email: "coach@test.dev"}, nil)

		w := env.do(http.MethodGet, "/api/v1/auth/me", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), env.userID.String())
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("should 404 a deleted user", func(t *testing.T) {
		env := setupRouter(t, false)
		env.auth.On("GetUserByID", mock.Anything, env.userID).Return(nil, fmt.Errorf("failed to get user: %w", gorm.ErrRecordNotFound))

		w := env.do(http.MethodGet, "/api/v1/auth/me", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestProfileHandler(t *testing.T) {
	t.Run("should require a token", func(t *testing.T) {
		env := setupRouter(t, false)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/profile/diet", nil)
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("should update the diet profile", func(t *testing.T) {
		env := setupRouter(t, false)
		weight := 70.0
		env.profiles.On("UpdateDietProfile", mock.Anything, env.userID, mock.MatchedBy(func(req *types.UpdateDietProfileRequest) bool {
			return req.WeightKg != nil && *req.WeightKg == 70 && req.Goal != nil && *req.Goal == "lose weight" && req.Age == nil
		})).Return(&models.DietProfile{UserID: env.userID, WeightKg: &weight, Goal: "lose weight"}, nil)

		w := env.do(http.MethodPut, "/api/v1/profile/diet", gin.H{"weight_kg": 70, "goal": "lose weight"})
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "lose weight")
	})

	t.Run("should reject out of range metrics", func(t *testing.T) {
		env := setupRouter(t, false)
		w := env.do(http.MethodPut, "/api/v1/profile/diet", gin.H{"weight_kg": -3})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should return targets", func(t *testing.T) {
		env := setupRouter(t, false)
		env.profiles.On("GetTargets", mock.Anything, env.userID).Return(nutrition.MacroTargets{DailyCalories: 2056, ProteinG: 180}, nil)

		w := env.do(http.MethodGet, "/api/v1/targets", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got nutrition.MacroTargets
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, 2056, got.DailyCalories)
		assert.Equal(t, 180, got.ProteinG)
	})

	t.Run("should hide storage errors", func(t *testing.T) {
		env := setupRouter(t, false)
		env.profiles.On("GetDietProfile", mock.Anything, env.userID).Return(nil, errors.New("connection reset"))

		w := env.do(http.MethodGet, "/api/v1/profile/diet", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "connection reset")
	})
}

func TestPlanHandler(t *testing.T) {
	t.Run("should generate with an empty body", func(t *testing.T) {
		env := setupRouter(t, false)
		plan := samplePlan(env.userID)
		env.plans.On("GeneratePlan", mock.Anything, env.userID, mock.MatchedBy(func(req *types.GeneratePlanRequest) bool {
			return req.Seed == nil && req.WeightKg == nil
		})).Return(plan, nil)

		w := env.do(http.MethodPost, "/api/v1/plans/generate", nil)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), plan.ID.String())
	})

	t.Run("should pass overrides and seed", func(t *testing.T) {
		env := setupRouter(t, false)
		env.plans.On("GeneratePlan", mock.Anything, env.userID, mock.MatchedBy(func(req *types.GeneratePlanRequest) bool {
			return req.Seed != nil && *req.Seed == 7 && req.DietType != nil && *req.DietType == "vegan"
		})).Return(samplePlan(env.userID), nil)

		w := env.do(http.MethodPost, "/api/v1/plans/generate", gin.H{"seed": 7, "diet_type": "vegan"})
		assert.Equal(t, http.StatusCreated, w.Code)
	})

	t.Run("should list with a limit", func(t *testing.T) {
		env := setupRouter(t, false)
		env.plans.On("ListPlans", mock.Anything, env.userID, 5).Return([]models.DietPlan{*samplePlan(env.userID)}, nil)

		w := env.do(http.MethodGet, "/api/v1/plans?limit=5", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"count":1`)

		w = env.do(http.MethodGet, "/api/v1/plans?limit=zero", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("should 404 missing plans", func(t *testing.T) {
		env := setupRouter(t, false)
		env.plans.On("LatestPlan", mock.Anything, env.userID).Return(nil, service.ErrPlanNotFound)
		planID := uuid.New()
		env.plans.On("GetPlan", mock.Anything, env.userID, planID).Return(nil, service.ErrPlanNotFound)

		assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/v1/plans/latest", nil).Code)
		assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/api/v1/plans/"+planID.String(), nil).Code)
		assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/api/v1/plans/not-a-uuid", nil).Code)
	})

	t.Run("should export when storage is configured", func(t *testing.T) {
		env := setupRouter(t, true)
		planID := uuid.New()
		env.exporter.On("Export", mock.Anything, env.userID, planID).Return(&types.ExportResponse{
			URL:       "https://s3.example/signed",
			Key:       "plans/x.json",
			ExpiresAt: time.Now().Add(15 * time.Minute),
		}, nil)

		w := env.do(http.MethodPost, "/api/v1/plans/"+planID.String()+"/export", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "https://s3.example/signed")
	})

	t.Run("should 503 exports without storage", func(t *testing.T) {
		env := setupRouter(t, false)
		w := env.do(http.MethodPost, "/api/v1/plans/"+uuid.NewString()+"/export", nil)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestChatHandler(t *testing.T) {
	t.Run("should return bubbles and plan", func(t *testing.T) {
		env := setupRouter(t, false)
		planID := uuid.New()
		env.chat.On("Chat", mock.Anything, env.userID, "plan my week").Return(&types.ChatResponse{
			Bubbles:  []string{"Here you go!"},
			DietPlan: &nutrition.DietPlanData{Type: "DIET_PLAN", DailyCalories: 1800},
			PlanID:   &planID,
		}, nil)

		w := env.do(http.MethodPost, "/api/v1/chat", gin.H{"message": "  plan my week "})
		require.Equal(t, http.StatusOK, w.Code)
		var got types.ChatResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, []string{"Here you go!"}, got.Bubbles)
		require.NotNil(t, got.DietPlan)
		assert.Equal(t, nutrition.Amount(1800), got.DietPlan.DailyCalories)
		assert.Equal(t, &planID, got.PlanID)
	})

	t.Run("should reject blank messages", func(t *testing.T) {
		env := setupRouter(t, false)
		assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/api/v1/chat", gin.H{"message": "   "}).Code)
		assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/api/v1/chat", gin.H{}).Code)
	})

	t.Run("should 503 when the model is down", func(t *testing.T) {
		env := setupRouter(t, false)
		env.chat.On("Chat", mock.Anything, env.userID, "hi").Return(nil, fmt.Errorf("%w: timeout", service.ErrLLMUnavailable))

		w := env.do(http.MethodPost, "/api/v1/chat", gin.H{"message": "hi"})
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		assert.NotContains(t, w.Body.String(), "timeout")
	})

	t.Run("should clear history", func(t *testing.T) {
		env := setupRouter(t, false)
		env.chat.On("ClearHistory", mock.Anything, env.userID).Return(nil)

		w := env.do(http.MethodDelete, "/api/v1/chat/history", nil)
		assert.Equal(t, http.StatusNoContent, w.Code)
		env.chat.AssertExpectations(t)
	})
}
