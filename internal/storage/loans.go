package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/verdict-finance/verdict/internal/common"
	"github.com/verdict-finance/verdict/internal/model"
)

// CreateLoanApplication inserts a new application prior to scoring.
func (s *SQLiteStorage) CreateLoanApplication(ctx context.Context, loan *model.LoanApplication) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if loan == nil {
		return fmt.Errorf("%w: loan", ErrNilParameter)
	}
	if err := validateID(loan.UserID, "userID"); err != nil {
		return err
	}

	if loan.ID == uuid.Nil {
		loan.ID = uuid.New()
	}
	if loan.CreatedAt.IsZero() {
		loan.CreatedAt = time.Now().UTC()
	}
	if loan.Status == "" {
		loan.Status = model.StatusProcessing
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO loan_applications (
			id, user_id, amount_requested, num_debts, total_debt_amount,
			monthly_emis, total_assets, monthly_income, city_tier, status, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		loan.ID.String(), loan.UserID.String(), loan.AmountRequested,
		loan.Features.NumDebts, loan.Features.TotalDebtAmount,
		loan.Features.MonthlyEMIs, loan.Features.TotalAssets,
		loan.Features.MonthlyIncome, string(loan.Features.CityTier),
		string(loan.Status), loan.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert loan application: %w", err)
	}

	return nil
}

// UpdateLoanDecision stores the computed decision on an application.
func (s *SQLiteStorage) UpdateLoanDecision(ctx context.Context, id uuid.UUID, result *model.ScoreResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}
	if result == nil {
		return fmt.Errorf("%w: result", ErrNilParameter)
	}

	feedback, err := json.Marshal(result.Feedback)
	if err != nil {
		return fmt.Errorf("failed to encode feedback: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE loan_applications
		SET ml_probability = ?, acceptance_rate = ?, status = ?, feedback = ?
		WHERE id = ?`,
		result.MLProbability, result.AcceptanceRate, string(result.Status),
		string(feedback), id.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to update loan decision: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: loan %s", common.ErrNotFound, id)
	}

	slog.Debug("stored loan decision", "loan_id", id, "status", result.Status)
	return nil
}

// GetLoanByID returns a single application, or ErrNotFound.
func (s *SQLiteStorage) GetLoanByID(ctx context.Context, id uuid.UUID) (*model.LoanApplication, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, loanSelect+` WHERE id = ?`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query loan: %w", err)
	}
	defer func() { _ = rows.Close() }()

	loans, err := scanLoans(rows)
	if err != nil {
		return nil, err
	}
	if len(loans) == 0 {
		return nil, common.ErrNotFound
	}
	return &loans[0], nil
}

// GetUserLoans returns all applications for a user, newest first.
func (s *SQLiteStorage) GetUserLoans(ctx context.Context, userID uuid.UUID) ([]model.LoanApplication, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		loanSelect+` WHERE user_id = ? ORDER BY created_at DESC`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query user loans: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanLoans(rows)
}

const loanSelect = `
	SELECT id, user_id, amount_requested, num_debts, total_debt_amount,
		monthly_emis, total_assets, monthly_income, city_tier,
		ml_probability, acceptance_rate, status, feedback, created_at
	FROM loan_applications`

func scanLoans(rows *sql.Rows) ([]model.LoanApplication, error) {
	var loans []model.LoanApplication

	for rows.Next() {
		var loan model.LoanApplication
		var id, userID, cityTier, status string
		var mlProbability, acceptanceRate sql.NullFloat64
		var feedback sql.NullString

		err := rows.Scan(&id, &userID, &loan.AmountRequested,
			&loan.Features.NumDebts, &loan.Features.TotalDebtAmount,
			&loan.Features.MonthlyEMIs, &loan.Features.TotalAssets,
			&loan.Features.MonthlyIncome, &cityTier,
			&mlProbability, &acceptanceRate, &status, &feedback, &loan.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan loan: %w", err)
		}

		loan.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid loan id %q: %w", id, err)
		}
		loan.UserID, err = uuid.Parse(userID)
		if err != nil {
			return nil, fmt.Errorf("invalid loan user id %q: %w", userID, err)
		}

		loan.Features.CityTier = model.CityTier(cityTier)
		loan.Status = model.LoanStatus(status)
		loan.MLProbability = mlProbability.Float64
		loan.AcceptanceRate = acceptanceRate.Float64
		loan.Decided = mlProbability.Valid

		if feedback.Valid && feedback.String != "" {
			var fb model.Feedback
			if err := json.Unmarshal([]byte(feedback.String), &fb); err != nil {
				return nil, fmt.Errorf("failed to decode loan feedback: %w", err)
			}
			loan.Feedback = &fb
		}

		loans = append(loans, loan)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating loans: %w", err)
	}

	return loans, nil
}
