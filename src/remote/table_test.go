package remote

import (
	"artbook/src/models"
	"artbook/src/store"
	"context"
	"errors"
	"log"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type TestSuite struct {
	suite.Suite
	DB   *gorm.DB
	Mock sqlmock.Sqlmock
}

func NewMockDB() (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening a stub database connection", err)
	}
	gormDB, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
	})
	if err != nil {
		log.Fatalf("An error '%s' was not expected when opening gorm database", err)
	}
	return gormDB, mock
}

func (s *TestSuite) SetupTest() {
	s.DB, s.Mock = NewMockDB()
}

func (s *TestSuite) TearDownTest() {
	s.NoError(s.Mock.ExpectationsWereMet())
}

func (s *TestSuite) TestGetSubject() {
	rows := sqlmock.NewRows([]string{"id", "kind", "name", "currency", "total", "remaining", "prices"}).
		AddRow("museum-of-light", "venue", "Museum of Light", "USD", 10, 4, `{"adult":1500}`)
	s.Mock.ExpectQuery(`SELECT \* FROM "subjects" WHERE id = \$1`).WillReturnRows(rows)

	t := NewTable[models.Subject](s.DB)
	v, err := t.Get(context.Background(), "museum-of-light")
	s.Require().NoError(err)
	s.Equal("Museum of Light", v.Name)
	s.Equal(4, v.Remaining)
	s.Equal(int64(1500), v.Prices["adult"])
}

func (s *TestSuite) TestGetMissingIsNotFound() {
	s.Mock.ExpectQuery(`SELECT \* FROM "registrations" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	t := NewTable[models.Registration](s.DB)
	_, err := t.Get(context.Background(), "missing")
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *TestSuite) TestUndefinedTableIsUnavailable() {
	s.Mock.ExpectQuery(`SELECT \* FROM "waitlist_entries"`).
		WillReturnError(&pgconn.PgError{Code: "42P01", Message: `relation "waitlist_entries" does not exist`})

	t := NewTable[models.WaitlistEntry](s.DB)
	_, err := t.List(context.Background())
	s.ErrorIs(err, store.ErrUnavailable)
}

func (s *TestSuite) TestCreateDuplicateIsConflict() {
	s.Mock.ExpectExec(`INSERT INTO "waitlist_entries"`).
		WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})

	t := NewTable[models.WaitlistEntry](s.DB)
	err := t.Create(context.Background(), models.WaitlistEntry{ID: "w1", SubjectID: "s", UserID: "u", Quantity: 1})
	s.ErrorIs(err, store.ErrConflict)
}

func (s *TestSuite) TestRememberUserOnce() {
	s.Mock.ExpectExec(`INSERT INTO "users" .* ON CONFLICT \("id"\) DO UPDATE SET`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	u := NewUsers(s.DB)
	user := models.User{ID: "ana", Email: "ana@example.com", Name: "Ana"}
	s.Require().NoError(u.Remember(context.Background(), user))
	s.Require().NoError(u.Remember(context.Background(), user))
	s.NoError(u.Remember(context.Background(), models.User{ID: "ben"}))
}

func (s *TestSuite) TestFindUser() {
	s.Mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "name"}).AddRow("ana", "ana@example.com", "Ana"))

	user, err := NewUsers(s.DB).Find(context.Background(), "ana")
	s.Require().NoError(err)
	s.Equal("ana@example.com", user.Email)
}

func TestRunner(t *testing.T) {
	suite.Run(t, new(TestSuite))
}

func TestClassify(t *testing.T) {
	assert.NoError(t, Classify(nil))
	assert.ErrorIs(t, Classify(gorm.ErrRecordNotFound), store.ErrNotFound)
	assert.ErrorIs(t, Classify(gorm.ErrDuplicatedKey), store.ErrConflict)
	assert.ErrorIs(t, Classify(&pgconn.PgError{Code: "23505"}), store.ErrConflict)
	assert.ErrorIs(t, Classify(&pgconn.PgError{Code: "42703"}), store.ErrUnavailable)

	transport := errors.New("dial tcp 10.0.0.1:5432: i/o timeout")
	err := Classify(transport)
	assert.ErrorIs(t, err, store.ErrUnavailable)
	assert.ErrorIs(t, err, transport)
}
