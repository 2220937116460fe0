// Package combostore persists pairwise order co-occurrence counters in
// PostgreSQL. Increments are atomic upserts so concurrent writers never lose
// counts; the popularity recompute that follows is best-effort and may lag.
package combostore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	commonerrors "nutrition-workers/internal/common/errors"
	"nutrition-workers/internal/common/logger"
	"nutrition-workers/internal/models"
)

type Store struct {
	db     *sql.DB
	logger logger.Logger
}

func NewStore(db *sql.DB, log logger.Logger) *Store {
	return &Store{
		db: db,
		logger: log.With(map[string]interface{}{
			"component": "combo-store",
		}),
	}
}

const incrementQuery = `
	INSERT INTO combo_frequencies (main_item_id, complementary_item_id, frequency, popularity, updated_at)
	VALUES ($1, $2, 1, 1, NOW())
	ON CONFLICT (main_item_id, complementary_item_id)
	DO UPDATE SET frequency = combo_frequencies.frequency + 1, updated_at = NOW()`

const recomputePopularityQuery = `
	UPDATE combo_frequencies
	SET popularity = frequency
	WHERE main_item_id = $1 AND complementary_item_id = $2`

// Increment bumps the counter for one ordered pair. The upsert is the atomic
// part; the popularity recompute is advisory and its failure is only logged.
func (s *Store) Increment(ctx context.Context, mainItemID, complementaryItemID string) error {
	if _, err := s.db.ExecContext(ctx, incrementQuery, mainItemID, complementaryItemID); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return commonerrors.NewOrderTimeoutError()
		}
		return commonerrors.NewComboWriteFailedError(err)
	}

	if _, err := s.db.ExecContext(ctx, recomputePopularityQuery, mainItemID, complementaryItemID); err != nil {
		s.logger.Warn("popularity recompute failed", map[string]interface{}{
			"mainItemId":          mainItemID,
			"complementaryItemId": complementaryItemID,
			"error":               err.Error(),
		})
	}
	return nil
}

const topForItemQuery = `
	SELECT main_item_id, complementary_item_id, frequency, popularity, updated_at
	FROM combo_frequencies
	WHERE main_item_id = $1
	ORDER BY popularity DESC
	LIMIT $2`

// TopForItem returns the most popular complementary counters for a main
// item, popularity descending.
func (s *Store) TopForItem(ctx context.Context, mainItemID string, limit int) ([]models.ComboFrequency, error) {
	start := time.Now()

	rows, err := s.db.QueryContext(ctx, topForItemQuery, mainItemID, limit)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
			return nil, commonerrors.NewOrderTimeoutError()
		}
		return nil, commonerrors.NewOrderQueryFailedError(err)
	}
	defer rows.Close()

	counters := make([]models.ComboFrequency, 0)
	for rows.Next() {
		var c models.ComboFrequency
		if err := rows.Scan(&c.MainItemID, &c.ComplementaryItemID, &c.Frequency, &c.Popularity, &c.UpdatedAt); err != nil {
			return nil, commonerrors.NewOrderQueryFailedError(err)
		}
		counters = append(counters, c)
	}
	if err := rows.Err(); err != nil {
		return nil, commonerrors.NewOrderQueryFailedError(err)
	}

	s.logger.Debug("combo counters loaded", map[string]interface{}{
		"mainItemId": mainItemID,
		"count":      len(counters),
		"tookMs":     time.Since(start).Milliseconds(),
	})
	return counters, nil
}
