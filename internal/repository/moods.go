package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"healthpulse-engine/internal/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const moodColumns = `id, patient_id, mood_level, stress_level, sleep_quality, sleep_hours,
	anxiety_level, notes, recorded_at, created_at`

// MoodsRepository 情绪打卡仓库（mood_checkins 表）
type MoodsRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewMoodsRepository 创建情绪打卡仓库
func NewMoodsRepository(db *sql.DB, logger *zap.Logger) *MoodsRepository {
	return &MoodsRepository{db: db, logger: logger}
}

// CreateMood 校验并写入一次打卡
func (r *MoodsRepository) CreateMood(ctx context.Context, m *models.MoodCheckIn) error {
	if err := m.Validate(); err != nil {
		return err
	}
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	m.RecordedAt = recordedAtOrNow(m.RecordedAt)

	query := `
		INSERT INTO mood_checkins (
			id, patient_id, mood_level, stress_level, sleep_quality, sleep_hours,
			anxiety_level, notes, recorded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING created_at
	`

	err := r.db.QueryRowContext(ctx, query,
		m.ID,
		m.PatientID,
		m.MoodLevel,
		m.StressLevel,
		m.SleepQuality,
		m.SleepHours,
		m.AnxietyLevel,
		nullString(m.Notes),
		m.RecordedAt,
	).Scan(&m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert mood check-in: %w", err)
	}

	r.logger.Debug("Mood check-in stored",
		zap.String("mood_id", m.ID),
		zap.String("patient_id", m.PatientID),
	)
	return nil
}

// LatestMood 最新一次打卡，没有记录时返回 (nil, nil)
func (r *MoodsRepository) LatestMood(ctx context.Context, patientID string) (*models.MoodCheckIn, error) {
	query := orderedQuery(`SELECT `+moodColumns+` FROM mood_checkins WHERE patient_id = $1`, "recorded_at", models.Descending, 1)

	m, err := scanMood(r.db.QueryRowContext(ctx, query, patientID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest mood: %w", err)
	}
	return m, nil
}

// ListMoods 按 recorded_at 排序的打卡列表
func (r *MoodsRepository) ListMoods(ctx context.Context, patientID string, order models.SortOrder, limit int) ([]models.MoodCheckIn, error) {
	query := orderedQuery(`SELECT `+moodColumns+` FROM mood_checkins WHERE patient_id = $1`, "recorded_at", order, limit)

	rows, err := r.db.QueryContext(ctx, query, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to list moods: %w", err)
	}
	defer rows.Close()

	var moods []models.MoodCheckIn
	for rows.Next() {
		m, err := scanMood(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mood: %w", err)
		}
		moods = append(moods, *m)
	}
	return moods, rows.Err()
}

func scanMood(row rowScanner) (*models.MoodCheckIn, error) {
	var m models.MoodCheckIn
	var notes sql.NullString

	if err := row.Scan(
		&m.ID,
		&m.PatientID,
		&m.MoodLevel,
		&m.StressLevel,
		&m.SleepQuality,
		&m.SleepHours,
		&m.AnxietyLevel,
		&notes,
		&m.RecordedAt,
		&m.CreatedAt,
	); err != nil {
		return nil, err
	}

	m.Notes = stringPtr(notes)
	return &m, nil
}
