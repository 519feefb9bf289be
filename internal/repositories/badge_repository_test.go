package repositories

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"merithub/internal/config"
	"merithub/internal/database"
	"merithub/internal/models"
)

func newMockRepo(t *testing.T) (BadgeRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	manager := database.NewManagerWithDB(db, &config.DatabaseConfig{
		SlowQueryThreshold: time.Second,
	}, zaptest.NewLogger(t))

	return NewBadgeRepository(manager, zaptest.NewLogger(t)), mock
}

func definitionRows(key string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows([]string{
		"key", "name", "description", "icon", "level", "kind",
		"reputation_award", "is_system_badge", "created_at", "updated_at",
	}).AddRow(key, "Good Question", "Question scored more than 10", "fa-circle-question",
		"bronze", "repetitive", 5, false, now, now)
}

func TestAwardNewGrant(t *testing.T) {
	repo, mock := newMockRepo(t)

	dedupe := "post:42"
	mock.ExpectQuery(regexp.QuoteMeta("FROM badge_definitions")).
		WithArgs("good-question").
		WillReturnRows(definitionRows("good-question"))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO user_badges")).
		WithArgs("alice", "good-question", dedupe).
		WillReturnRows(sqlmock.NewRows([]string{"id", "granted_at"}).AddRow(int64(7), time.Now()))

	badge, err := repo.Award(context.Background(), "alice", "good-question", &dedupe)
	require.NoError(t, err)
	require.NotNil(t, badge)

	assert.True(t, badge.IsNew)
	assert.Equal(t, int64(7), badge.ID)
	assert.Equal(t, "alice", badge.UserRef)
	assert.Equal(t, "good-question", badge.BadgeKey)
	assert.Equal(t, "Good Question", badge.BadgeName)
	assert.Equal(t, models.LevelBronze, badge.BadgeLevel)
	require.NotNil(t, badge.DedupeKey)
	assert.Equal(t, "post:42", *badge.DedupeKey)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAwardExistingSlot(t *testing.T) {
	repo, mock := newMockRepo(t)

	granted := time.Now().Add(-time.Hour)
	dedupe := "post:42"
	mock.ExpectQuery(regexp.QuoteMeta("FROM badge_definitions")).
		WithArgs("good-question").
		WillReturnRows(definitionRows("good-question"))
	// Conflicting insert returns no row.
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO user_badges")).
		WithArgs("alice", "good-question", dedupe).
		WillReturnRows(sqlmock.NewRows([]string{"id", "granted_at"}))
	mock.ExpectQuery(regexp.QuoteMeta("dedupe_key IS NOT DISTINCT FROM")).
		WithArgs("alice", "good-question", dedupe).
		WillReturnRows(sqlmock.NewRows([]string{"id", "granted_at"}).AddRow(int64(3), granted))

	badge, err := repo.Award(context.Background(), "alice", "good-question", &dedupe)
	require.NoError(t, err)
	require.NotNil(t, badge)

	assert.False(t, badge.IsNew)
	assert.Equal(t, int64(3), badge.ID)
	assert.WithinDuration(t, granted, badge.GrantedAt, time.Second)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAwardUnregisteredKey(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM badge_definitions")).
		WithArgs("retired-badge").
		WillReturnRows(sqlmock.NewRows([]string{
			"key", "name", "description", "icon", "level", "kind",
			"reputation_award", "is_system_badge", "created_at", "updated_at",
		}))

	badge, err := repo.Award(context.Background(), "alice", "retired-badge", nil)
	assert.NoError(t, err)
	assert.Nil(t, badge)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAwardNilDedupeKey(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM badge_definitions")).
		WithArgs("solution-author").
		WillReturnRows(definitionRows("solution-author"))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO user_badges")).
		WithArgs("alice", "solution-author", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id", "granted_at"}).AddRow(int64(9), time.Now()))

	badge, err := repo.Award(context.Background(), "alice", "solution-author", nil)
	require.NoError(t, err)
	require.NotNil(t, badge)

	assert.True(t, badge.IsNew)
	assert.Nil(t, badge.DedupeKey)
	assert.Equal(t, "alice/solution-author", badge.Slot())

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertDefinition(t *testing.T) {
	repo, mock := newMockRepo(t)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO badge_definitions")).
		WithArgs("good-question", "Good Question", "Question scored more than 10",
			"fa-circle-question", models.LevelBronze, models.KindRepetitive, 5, false).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	def := &models.BadgeDefinition{
		Key: "good-question", Name: "Good Question",
		Description: "Question scored more than 10", Icon: "fa-circle-question",
		Level: models.LevelBronze, Kind: models.KindRepetitive, ReputationAward: 5,
	}
	err := repo.UpsertDefinition(context.Background(), def)
	require.NoError(t, err)
	assert.WithinDuration(t, now, def.CreatedAt, time.Second)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListUserBadges(t *testing.T) {
	repo, mock := newMockRepo(t)

	dedupe := "post:42"
	rows := sqlmock.NewRows([]string{
		"id", "user_ref", "badge_key", "dedupe_key", "granted_at", "name", "level",
	}).
		AddRow(int64(2), "alice", "good-question", dedupe, time.Now(), "Good Question", "bronze").
		AddRow(int64(1), "alice", "solution-author", nil, time.Now().Add(-time.Hour), "Solution Author", "bronze")

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_badges ub")).
		WithArgs("alice").
		WillReturnRows(rows)

	badges, err := repo.ListUserBadges(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, badges, 2)

	assert.Equal(t, "good-question", badges[0].BadgeKey)
	require.NotNil(t, badges[0].DedupeKey)
	assert.Equal(t, "post:42", *badges[0].DedupeKey)
	assert.Equal(t, "solution-author", badges[1].BadgeKey)
	assert.Nil(t, badges[1].DedupeKey)

	assert.NoError(t, mock.ExpectationsWereMet())
}
