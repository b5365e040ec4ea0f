package data

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-kratos/kratos/v2/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterialRepo_ListByCourse(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewMaterialRepo(&Data{db: db}, log.DefaultLogger)
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `course_materials` WHERE course_id = ? ORDER BY position, id")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "course_id", "title", "url", "position", "created_at"}).
			AddRow("m1", "c1", "Intro", "https://cdn.example.com/m1.pdf", 1, now).
			AddRow("m2", "c1", "Slices", "https://cdn.example.com/m2.pdf", 2, now))

	materials, err := repo.ListByCourse(context.Background(), "c1")
	require.NoError(t, err)
	require.Len(t, materials, 2)
	assert.Equal(t, "Intro", materials[0].Title)
	assert.Equal(t, int32(2), materials[1].Position)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMaterialRepo_ListByCourse_Error(t *testing.T) {
	db, mock := setupTestDB(t)
	repo := NewMaterialRepo(&Data{db: db}, log.DefaultLogger)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM `course_materials`")).
		WillReturnError(errors.New("connection refused"))

	_, err := repo.ListByCourse(context.Background(), "c1")
	assert.ErrorContains(t, err, "failed to list materials")
}
