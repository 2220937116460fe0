// Package orders reads completed order history from PostgreSQL for the
// analytics worker. Rows carry a nutrition snapshot taken at order time plus
// the vendor/item lines as JSON.
package orders

import (
	"context"
	"database/sql"
	"encoding/json"
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
			"component": "order-store",
		}),
	}
}

const listCompletedQuery = `
	SELECT id, user_id, status, total_calories, total_protein, total_fat,
	       total_carbohydrates, items, created_at
	FROM orders
	WHERE user_id = $1 AND status = 'completed'
	ORDER BY created_at ASC`

// ListCompleted returns every completed order for the user, oldest first. An
// unknown user yields an empty slice, not an error.
func (s *Store) ListCompleted(ctx context.Context, userID string) ([]models.OrderRecord, error) {
	start := time.Now()

	rows, err := s.db.QueryContext(ctx, listCompletedQuery, userID)
	if err != nil {
		return nil, s.mapError(ctx, err)
	}
	defer rows.Close()

	records := make([]models.OrderRecord, 0)
	for rows.Next() {
		var rec models.OrderRecord
		var itemsRaw []byte
		if err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.Status,
			&rec.TotalCalories, &rec.TotalProtein, &rec.TotalFat, &rec.TotalCarbs,
			&itemsRaw, &rec.CreatedAt,
		); err != nil {
			return nil, commonerrors.NewOrderQueryFailedError(err)
		}

		if len(itemsRaw) > 0 {
			if err := json.Unmarshal(itemsRaw, &rec.Lines); err != nil {
				// A corrupt lines blob costs top-N detail, not the whole
				// analysis.
				s.logger.Warn("unreadable order lines", map[string]interface{}{
					"orderId": rec.ID,
					"error":   err.Error(),
				})
				rec.Lines = nil
			}
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, s.mapError(ctx, err)
	}

	s.logger.Debug("order history loaded", map[string]interface{}{
		"userId":     userID,
		"orderCount": len(records),
		"tookMs":     time.Since(start).Milliseconds(),
	})
	return records, nil
}

func (s *Store) mapError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded {
		return commonerrors.NewOrderTimeoutError()
	}
	return commonerrors.NewOrderQueryFailedError(err)
}
