package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verdict-finance/verdict/internal/common"
	"github.com/verdict-finance/verdict/internal/model"
)

// SaveBehavior persists one analysis result. The behavior history is
// append-only; readers use GetLatestBehavior.
func (s *SQLiteStorage) SaveBehavior(ctx context.Context, behavior *model.StoredBehavior) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if behavior == nil {
		return fmt.Errorf("%w: behavior", ErrNilParameter)
	}
	if err := validateID(behavior.UserID, "userID"); err != nil {
		return err
	}
	if err := validateID(behavior.UploadID, "uploadID"); err != nil {
		return err
	}

	if behavior.ID == uuid.Nil {
		behavior.ID = uuid.New()
	}
	if behavior.CreatedAt.IsZero() {
		behavior.CreatedAt = time.Now().UTC()
	}

	scores, err := json.Marshal(behavior.Result.CategoryScores)
	if err != nil {
		return fmt.Errorf("failed to encode category scores: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO financial_behaviors (
			id, user_id, upload_id, total_score, rating, category_scores,
			cash_inflow_pattern, liquidity_resilience_days,
			transaction_depth_days, has_stable_inflow, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		behavior.ID.String(), behavior.UserID.String(), behavior.UploadID.String(),
		behavior.Result.TotalScore, string(behavior.Result.Rating), string(scores),
		string(behavior.Result.CashInflowPattern),
		behavior.Result.LiquidityResilienceDays,
		behavior.Result.TransactionDepthDays,
		behavior.Result.HasStableInflow, behavior.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert behavior: %w", err)
	}

	return nil
}

// GetLatestBehavior returns the most recent analysis for a user, or
// ErrNotFound when no statement has been analyzed yet.
func (s *SQLiteStorage) GetLatestBehavior(ctx context.Context, userID uuid.UUID) (*model.StoredBehavior, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, upload_id, total_score, rating, category_scores,
			cash_inflow_pattern, liquidity_resilience_days,
			transaction_depth_days, has_stable_inflow, created_at
		FROM financial_behaviors
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT 1`, userID.String())

	var behavior model.StoredBehavior
	var id, uid, uploadID, rating, scores, inflow string

	err := row.Scan(&id, &uid, &uploadID, &behavior.Result.TotalScore,
		&rating, &scores, &inflow,
		&behavior.Result.LiquidityResilienceDays,
		&behavior.Result.TransactionDepthDays,
		&behavior.Result.HasStableInflow, &behavior.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan behavior: %w", err)
	}

	behavior.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid behavior id %q: %w", id, err)
	}
	behavior.UserID, err = uuid.Parse(uid)
	if err != nil {
		return nil, fmt.Errorf("invalid behavior user id %q: %w", uid, err)
	}
	behavior.UploadID, err = uuid.Parse(uploadID)
	if err != nil {
		return nil, fmt.Errorf("invalid behavior upload id %q: %w", uploadID, err)
	}

	behavior.Result.Rating = model.BehaviorRating(rating)
	behavior.Result.CashInflowPattern = model.InflowPattern(inflow)

	if err := json.Unmarshal([]byte(scores), &behavior.Result.CategoryScores); err != nil {
		return nil, fmt.Errorf("failed to decode category scores: %w", err)
	}

	return &behavior, nil
}
