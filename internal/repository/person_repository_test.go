package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/training-import/internal/models"
)

func TestPersonRepositoryFindByPhoneKey(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPersonRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "phone_key", "latest_name", "latest_org", "created_at", "updated_at"}).
		AddRow("p-1", "13812345678", "张三", nil, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, phone_key, latest_name, latest_org, created_at, updated_at FROM persons WHERE phone_key = $1")).
		WithArgs("13812345678").
		WillReturnRows(rows)

	person, err := repo.FindByPhoneKey(context.Background(), "13812345678")
	require.NoError(t, err)
	assert.Equal(t, "p-1", person.ID)
	require.NotNil(t, person.LatestName)
	assert.Equal(t, "张三", *person.LatestName)
	assert.Nil(t, person.LatestOrg)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonRepositoryFindByPhoneKeyMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPersonRepository(db)

	mock.ExpectQuery("FROM persons WHERE phone_key").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByPhoneKey(context.Background(), "13800000000")
	require.ErrorIs(t, err, sql.ErrNoRows)
}

func TestPersonRepositoryInsertWithoutTx(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPersonRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO persons (id, phone_key, latest_name, latest_org, created_at, updated_at)")).
		WithArgs(sqlmock.AnyArg(), "13812345678", nil, nil, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	person := &models.Person{PhoneKey: "13812345678"}
	require.NoError(t, repo.Insert(context.Background(), person))
	assert.NotEmpty(t, person.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonRepositoryInsertDuplicateInsideTxRollsBackToSavepoint(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	store := NewStore(db)
	repo := NewPersonRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SAVEPOINT person_insert")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO persons").WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectExec(regexp.QuoteMeta("ROLLBACK TO SAVEPOINT person_insert")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	var insertErr error
	err := store.WithinTx(context.Background(), func(ctx context.Context) error {
		insertErr = repo.Insert(ctx, &models.Person{PhoneKey: "13812345678"})
		return nil
	})
	require.NoError(t, err)
	require.ErrorIs(t, insertErr, ErrDuplicatePhoneKey)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonRepositoryInsertInsideTxReleasesSavepoint(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	store := NewStore(db)
	repo := NewPersonRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("SAVEPOINT person_insert")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO persons").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(regexp.QuoteMeta("RELEASE SAVEPOINT person_insert")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	err := store.WithinTx(context.Background(), func(ctx context.Context) error {
		return repo.Insert(ctx, &models.Person{PhoneKey: "13812345678"})
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPersonRepositoryUpdateLatestCoalesces(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewPersonRepository(db)

	name := "李四"
	mock.ExpectExec(regexp.QuoteMeta("UPDATE persons SET latest_name = COALESCE($1, latest_name), latest_org = COALESCE($2, latest_org), updated_at = $3 WHERE id = $4")).
		WithArgs("李四", nil, sqlmock.AnyArg(), "p-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateLatest(context.Background(), "p-1", &name, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}
