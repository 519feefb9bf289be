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

func newMockContentRepo(t *testing.T) (ContentRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	manager := database.NewManagerWithDB(db, &config.DatabaseConfig{
		SlowQueryThreshold: time.Second,
	}, zaptest.NewLogger(t))

	return NewContentRepository(manager, zaptest.NewLogger(t)), mock
}

func TestGetAuthoredAnswers(t *testing.T) {
	repo, mock := newMockContentRepo(t)

	rows := sqlmock.NewRows([]string{"id", "user_ref", "score", "view_count", "is_correct", "created_at"}).
		AddRow(int64(1), "alice", 5, 12, true, time.Now()).
		AddRow(int64(2), "alice", -2, 0, false, time.Now())

	mock.ExpectQuery(regexp.QuoteMeta("FROM answers")).
		WithArgs("alice").
		WillReturnRows(rows)

	items, err := repo.GetAuthoredAnswers(context.Background(), "alice")
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.Equal(t, models.KindAnswer, items[0].Kind)
	assert.True(t, items[0].IsCorrectAnswer)
	assert.Equal(t, "answer:1", items[0].DedupeKey())
	assert.Equal(t, -2, items[1].Score)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserProfileMissingRowIsZeroProfile(t *testing.T) {
	repo, mock := newMockContentRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("FROM user_profiles")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{
			"user_ref",
			"total_questions_authored", "total_answers_authored",
			"total_articles_authored", "total_links_authored",
			"total_comments_posted", "total_votes_cast",
			"total_views_accrued", "total_followers_gained",
			"reputation_score",
		}))

	profile, err := repo.GetUserProfile(context.Background(), "ghost")
	require.NoError(t, err)
	require.NotNil(t, profile)

	assert.Equal(t, "ghost", profile.UserRef)
	assert.Zero(t, profile.ReputationScore)
	assert.Zero(t, profile.TotalQuestionsAuthored)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListActiveUserRefs(t *testing.T) {
	repo, mock := newMockContentRepo(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT DISTINCT user_ref")).
		WithArgs(2, 0).
		WillReturnRows(sqlmock.NewRows([]string{"user_ref"}).AddRow("alice").AddRow("bob"))

	refs, err := repo.ListActiveUserRefs(context.Background(), 2, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"alice", "bob"}, refs)

	assert.NoError(t, mock.ExpectationsWereMet())
}
