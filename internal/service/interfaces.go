// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/verdict-finance/verdict/internal/model"
)

// Storage defines the contract for our persistence layer. The decision
// core never touches it directly; the engine and API handlers treat every
// call as a fallible, retryable boundary operation.
type Storage interface {
	// User operations
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)

	// Loan operations
	CreateLoanApplication(ctx context.Context, loan *model.LoanApplication) error
	GetLoanByID(ctx context.Context, id uuid.UUID) (*model.LoanApplication, error)
	GetUserLoans(ctx context.Context, userID uuid.UUID) ([]model.LoanApplication, error)
	UpdateLoanDecision(ctx context.Context, id uuid.UUID, result *model.ScoreResult) error

	// Transaction upload operations
	SaveTransactionUpload(ctx context.Context, upload *model.TransactionUpload) error
	GetUserUploads(ctx context.Context, userID uuid.UUID) ([]model.TransactionUpload, error)

	// Behavior operations. Each analysis supersedes the previous one;
	// GetLatestBehavior implements the read-latest-wins semantics.
	SaveBehavior(ctx context.Context, behavior *model.StoredBehavior) error
	GetLatestBehavior(ctx context.Context, userID uuid.UUID) (*model.StoredBehavior, error)

	// Bank catalog operations
	GetAllBanks(ctx context.Context) ([]model.Bank, error)
	GetTopBanks(ctx context.Context, limit int) ([]model.Bank, error)
	GetTrustedBanks(ctx context.Context, limit int) ([]model.Bank, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
