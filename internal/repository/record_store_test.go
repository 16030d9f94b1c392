package repository

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"healthpulse-engine/internal/evaluator"
	"healthpulse-engine/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRecordStore_FeedsEvaluator(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewRecordStore(db, zap.NewNop())
	now := time.Now()

	mock.ExpectQuery(`FROM vital_signs`).
		WithArgs("patient-1").
		WillReturnRows(sqlmock.NewRows(vitalRowColumns).
			AddRow("vital-1", "patient-1", 190, 125, 135, 37.0, nil, nil, nil, now, now))
	mock.ExpectQuery(`FROM symptoms`).
		WithArgs("patient-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`FROM mood_checkins`).
		WithArgs("patient-1").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectQuery(`FROM health_scores WHERE patient_id = \$1 ORDER BY calculated_at ASC$`).
		WithArgs("patient-1").
		WillReturnRows(sqlmock.NewRows(scoreRowColumns))

	e := evaluator.NewEvaluator(store, zap.NewNop())
	score, err := e.CalculateHealthScore(context.Background(), "patient-1")

	require.NoError(t, err)
	assert.Equal(t, 50, score.VitalScore)
	assert.Equal(t, 90, score.SymptomScore)
	assert.Equal(t, 70, score.MentalScore)
	assert.Equal(t, 70, score.OverallScore)
	assert.Equal(t, models.TrendStable, score.Trend)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveScoreWithCorrelations_SingleTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewRecordStore(db, zap.NewNop())
	six := 6
	score := &models.HealthScore{ID: "score-1", PatientID: "patient-1", OverallScore: 73,
		Trend: models.TrendStable, RiskLevel: models.SeverityMedium, AutoAlerts: []string{}, CalculatedAt: time.Now()}
	correlations := []models.HealthCorrelation{{
		ID: "corr-1", PatientID: "patient-1", CorrelationType: models.CorrelationMoodToVitals,
		Confidence: 0.72, TimelapseHours: &six, Evidence: []string{}, DiscoveredAt: time.Now(),
	}}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO health_scores`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM health_correlations WHERE patient_id = \$1`).
		WithArgs("patient-1").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`INSERT INTO health_correlations`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.SaveScoreWithCorrelations(context.Background(), score, correlations))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSaveScoreWithCorrelations_RollsBackScore(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewRecordStore(db, zap.NewNop())
	score := &models.HealthScore{ID: "score-1", PatientID: "patient-1", CalculatedAt: time.Now()}

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO health_scores`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`DELETE FROM health_correlations`).WillReturnError(errors.New("lock timeout"))
	mock.ExpectRollback()

	err = store.SaveScoreWithCorrelations(context.Background(), score, nil)

	assert.ErrorContains(t, err, "failed to clear correlations")
	require.NoError(t, mock.ExpectationsWereMet())
}
