package router

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"merithub/internal/config"
	"merithub/internal/database"
	"merithub/internal/models"
	"merithub/internal/services"
)

type stubBadgeService struct {
	sweepErr error
}

func (s *stubBadgeService) ProcessUserBadges(ctx context.Context, userRef string) (*services.SweepResult, error) {
	if s.sweepErr != nil {
		return nil, s.sweepErr
	}
	return &services.SweepResult{UserRef: userRef, Awarded: 2, NewlyAwarded: 1}, nil
}

func (s *stubBadgeService) GetUserBadges(ctx context.Context, userRef string) ([]*models.UserBadge, error) {
	return []*models.UserBadge{
		{ID: 1, UserRef: userRef, BadgeKey: "good-question", BadgeName: "Good Question", BadgeLevel: models.LevelBronze},
	}, nil
}

func (s *stubBadgeService) CountUserBadges(ctx context.Context, userRef string) (int64, error) {
	return 3, nil
}

func (s *stubBadgeService) ListDefinitions(ctx context.Context) ([]*models.BadgeDefinition, error) {
	return []*models.BadgeDefinition{
		{Key: "good-question", Name: "Good Question", Level: models.LevelBronze, Kind: models.KindRepetitive},
	}, nil
}

func newTestRouter(t *testing.T, badgeSvc services.BadgeService) http.Handler {
	t.Helper()

	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := zaptest.NewLogger(t)
	manager := database.NewManagerWithDB(db, &config.DatabaseConfig{
		SlowQueryThreshold: time.Second,
	}, logger)

	sc := &services.ServiceCollection{
		Badge:     badgeSvc,
		DBManager: manager,
		Logger:    logger,
		Config:    &config.Config{},
	}
	return New(sc, logger)
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t, &stubBadgeService{})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestTriggerSweepEndpoint(t *testing.T) {
	r := newTestRouter(t, &stubBadgeService{})

	req := httptest.NewRequest(http.MethodPost, "/internal/sweeps/alice", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var result services.SweepResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "alice", result.UserRef)
	assert.Equal(t, 1, result.NewlyAwarded)
}

func TestTriggerSweepMapsServiceErrors(t *testing.T) {
	r := newTestRouter(t, &stubBadgeService{
		sweepErr: services.NewValidationError("user ref is required", nil),
	})

	req := httptest.NewRequest(http.MethodPost, "/internal/sweeps/bad", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListUserBadgesEndpoint(t *testing.T) {
	r := newTestRouter(t, &stubBadgeService{})

	req := httptest.NewRequest(http.MethodGet, "/internal/users/alice/badges", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		UserRef string              `json:"user_ref"`
		Badges  []*models.UserBadge `json:"badges"`
		Count   int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "alice", body.UserRef)
	require.Len(t, body.Badges, 1)
	assert.Equal(t, "good-question", body.Badges[0].BadgeKey)
	// The count comes from the ledger, not the page of grants returned.
	assert.Equal(t, 3, body.Count)
}

func TestListDefinitionsEndpoint(t *testing.T) {
	r := newTestRouter(t, &stubBadgeService{})

	req := httptest.NewRequest(http.MethodGet, "/internal/badges", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Count)
}

func TestMetricsEndpoint(t *testing.T) {
	r := newTestRouter(t, &stubBadgeService{})

	req := httptest.NewRequest(http.MethodGet, "/internal/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "database")
}
