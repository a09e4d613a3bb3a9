package repository

import (
	"context"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRepositoryCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM enrollments e")).
		WithArgs("2024-01-01", "2025-01-01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(7))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(DISTINCT e.person_id)")).
		WithArgs("2024-01-01", "2025-01-01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))
	mock.ExpectQuery(regexp.QuoteMeta("HAVING COUNT(*) >= 2) repeaters")).
		WithArgs("2024-01-01", "2025-01-01").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	ctx := context.Background()
	enrollments, err := repo.CountEnrollments(ctx, 2024)
	require.NoError(t, err)
	unique, err := repo.CountUniquePeople(ctx, 2024)
	require.NoError(t, err)
	repeat, err := repo.CountRepeatPeople(ctx, 2024)
	require.NoError(t, err)

	assert.Equal(t, 7, enrollments)
	assert.Equal(t, 5, unique)
	assert.Equal(t, 2, repeat)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestStatsRepositoryTopLearners(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewStatsRepository(db)

	rows := sqlmock.NewRows([]string{"person_id", "phone_key", "latest_name", "enrollments"}).
		AddRow("p-1", "13800000001", "张三", 3).
		AddRow("p-2", "13800000002", nil, 2)
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY enrollments DESC, p.phone_key ASC")).
		WithArgs("2024-01-01", "2025-01-01", 5).
		WillReturnRows(rows)

	learners, err := repo.TopLearners(context.Background(), 2024, 0)
	require.NoError(t, err)
	require.Len(t, learners, 2)
	assert.Equal(t, 3, learners[0].Enrollments)
	assert.Nil(t, learners[1].LatestName)
	require.NoError(t, mock.ExpectationsWereMet())
}
