package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"healthpulse-engine/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var moodRowColumns = []string{
	"id", "patient_id", "mood_level", "stress_level", "sleep_quality", "sleep_hours",
	"anxiety_level", "notes", "recorded_at", "created_at",
}

func setupMockMoodsDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *MoodsRepository) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	return db, mock, NewMoodsRepository(db, zap.NewNop())
}

func TestCreateMood_Success(t *testing.T) {
	db, mock, repo := setupMockMoodsDB(t)
	defer db.Close()

	notes := "long day"
	recordedAt := time.Date(2024, 4, 3, 22, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`INSERT INTO mood_checkins`).
		WithArgs(sqlmock.AnyArg(), "patient-1", 2, 8, 3, 4.5, 7, notes, recordedAt).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(recordedAt))

	m := &models.MoodCheckIn{
		PatientID:    "patient-1",
		MoodLevel:    2,
		StressLevel:  8,
		SleepQuality: 3,
		SleepHours:   4.5,
		AnxietyLevel: 7,
		Notes:        &notes,
		RecordedAt:   recordedAt,
	}

	require.NoError(t, repo.CreateMood(context.Background(), m))
	assert.NotEmpty(t, m.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateMood_OutOfRange(t *testing.T) {
	db, mock, repo := setupMockMoodsDB(t)
	defer db.Close()

	err := repo.CreateMood(context.Background(), &models.MoodCheckIn{PatientID: "patient-1", MoodLevel: 6})

	assert.ErrorContains(t, err, "mood_level")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestMood(t *testing.T) {
	db, mock, repo := setupMockMoodsDB(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(`FROM mood_checkins WHERE patient_id = \$1 ORDER BY recorded_at DESC LIMIT 1`).
		WithArgs("patient-1").
		WillReturnRows(sqlmock.NewRows(moodRowColumns).AddRow("mood-1", "patient-1", 4, 3, 7, 7.5, 2, nil, now, now))

	m, err := repo.LatestMood(context.Background(), "patient-1")

	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 4, m.MoodLevel)
	assert.Equal(t, 7.5, m.SleepHours)
	assert.Nil(t, m.Notes)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestLatestMood_NoRecord(t *testing.T) {
	db, mock, repo := setupMockMoodsDB(t)
	defer db.Close()

	mock.ExpectQuery(`FROM mood_checkins`).WillReturnError(sql.ErrNoRows)

	m, err := repo.LatestMood(context.Background(), "patient-1")

	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestListMoods(t *testing.T) {
	db, mock, repo := setupMockMoodsDB(t)
	defer db.Close()

	now := time.Now()
	rows := sqlmock.NewRows(moodRowColumns).
		AddRow("mood-2", "patient-1", 2, 8, 2, 4.0, 9, nil, now, now).
		AddRow("mood-1", "patient-1", 4, 3, 7, 7.5, 2, nil, now.Add(-time.Hour), now)

	mock.ExpectQuery(`ORDER BY recorded_at DESC LIMIT 50`).
		WithArgs("patient-1").
		WillReturnRows(rows)

	moods, err := repo.ListMoods(context.Background(), "patient-1", models.Descending, TimelineLimit)

	require.NoError(t, err)
	require.Len(t, moods, 2)
	assert.Equal(t, "mood-2", moods[0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
