package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/verdict-finance/verdict/internal/model"
)

// seedBanks populates the partner bank catalog. Runs once as part of the
// schema migration that creates the table.
func seedBanks(tx *sql.Tx) error {
	banks := []model.Bank{
		{Name: "HDFC Bank", AvgApprovalTime: "24 Hours", SuccessRate: 92.5, InterestRateMin: 10.5, InterestRateMax: 14.0, TrustScore: 9.2, Rating: 4.8, TotalLoans: 1250},
		{Name: "ICICI Bank", AvgApprovalTime: "48 Hours", SuccessRate: 89.0, InterestRateMin: 11.0, InterestRateMax: 15.5, TrustScore: 8.9, Rating: 4.6, TotalLoans: 980},
		{Name: "Axis Bank", AvgApprovalTime: "36 Hours", SuccessRate: 86.5, InterestRateMin: 12.5, InterestRateMax: 16.0, TrustScore: 8.6, Rating: 4.5, TotalLoans: 670},
		{Name: "Kotak Bank", AvgApprovalTime: "12 Hours", SuccessRate: 84.0, InterestRateMin: 13.0, InterestRateMax: 17.5, TrustScore: 8.3, Rating: 4.2, TotalLoans: 450},
		{Name: "SBI Bank", AvgApprovalTime: "72 Hours", SuccessRate: 94.5, InterestRateMin: 9.8, InterestRateMax: 13.5, TrustScore: 9.5, Rating: 4.9, TotalLoans: 2100},
		{Name: "Bajaj Finserv", AvgApprovalTime: "6 Hours", SuccessRate: 81.0, InterestRateMin: 14.0, InterestRateMax: 19.0, TrustScore: 7.8, Rating: 4.0, TotalLoans: 320},
	}

	for _, bank := range banks {
		_, err := tx.Exec(`
			INSERT INTO banks (id, name, logo_url, avg_approval_time, success_rate,
				interest_rate_min, interest_rate_max, trust_score, total_loans, rating)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			uuid.New().String(), bank.Name, bank.LogoURL, bank.AvgApprovalTime,
			bank.SuccessRate, bank.InterestRateMin, bank.InterestRateMax,
			bank.TrustScore, bank.TotalLoans, bank.Rating,
		)
		if err != nil {
			return fmt.Errorf("failed to seed bank %s: %w", bank.Name, err)
		}
	}

	return nil
}

const bankSelect = `
	SELECT id, name, logo_url, avg_approval_time, success_rate,
		interest_rate_min, interest_rate_max, trust_score, total_loans, rating
	FROM banks`

// GetAllBanks returns the full partner bank catalog.
func (s *SQLiteStorage) GetAllBanks(ctx context.Context) ([]model.Bank, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	return s.queryBanks(ctx, bankSelect)
}

// GetTopBanks returns banks with the highest approval success rate.
func (s *SQLiteStorage) GetTopBanks(ctx context.Context, limit int) ([]model.Bank, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	return s.queryBanks(ctx, bankSelect+` ORDER BY success_rate DESC LIMIT ?`, limit)
}

// GetTrustedBanks returns banks ordered by trust score.
func (s *SQLiteStorage) GetTrustedBanks(ctx context.Context, limit int) ([]model.Bank, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 10
	}
	return s.queryBanks(ctx, bankSelect+` ORDER BY trust_score DESC LIMIT ?`, limit)
}

func (s *SQLiteStorage) queryBanks(ctx context.Context, query string, args ...any) ([]model.Bank, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query banks: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var banks []model.Bank
	for rows.Next() {
		var bank model.Bank
		var id string
		var logoURL sql.NullString

		err := rows.Scan(&id, &bank.Name, &logoURL, &bank.AvgApprovalTime,
			&bank.SuccessRate, &bank.InterestRateMin, &bank.InterestRateMax,
			&bank.TrustScore, &bank.TotalLoans, &bank.Rating)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank: %w", err)
		}

		bank.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid bank id %q: %w", id, err)
		}
		bank.LogoURL = logoURL.String

		banks = append(banks, bank)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating banks: %w", err)
	}

	return banks, nil
}
