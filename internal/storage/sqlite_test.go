package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdict-finance/verdict/internal/common"
	"github.com/verdict-finance/verdict/internal/model"
)

// Helper function to create migrated test storage.
func createTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err, "failed to create storage")

	require.NoError(t, store.Migrate(context.Background()), "failed to migrate")
	t.Cleanup(func() { _ = store.Close() })

	return store
}

func createTestUser(t *testing.T, store *SQLiteStorage, email string) *model.User {
	t.Helper()
	user := &model.User{
		Email:        email,
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		FullName:     "Test User",
		CityTier:     model.TierTwo,
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func TestMigrate(t *testing.T) {
	store := createTestStorage(t)

	var version int
	err := store.db.QueryRow("PRAGMA user_version").Scan(&version)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// Re-running is a no-op.
	require.NoError(t, store.Migrate(context.Background()))
}

func TestUserRoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	user := createTestUser(t, store, "alice@example.com")
	assert.NotEqual(t, uuid.Nil, user.ID)
	assert.False(t, user.CreatedAt.IsZero())

	byID, err := store.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, byID.Email)
	assert.Equal(t, user.FullName, byID.FullName)
	assert.Equal(t, model.TierTwo, byID.CityTier)

	byEmail, err := store.GetUserByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
}

func TestUserDuplicateEmail(t *testing.T) {
	store := createTestStorage(t)

	createTestUser(t, store, "dup@example.com")

	dup := &model.User{
		Email:        "dup@example.com",
		PasswordHash: "hash",
		FullName:     "Other User",
		CityTier:     model.TierOne,
	}
	err := store.CreateUser(context.Background(), dup)
	assert.ErrorIs(t, err, common.ErrDuplicateEntry)
}

func TestUserNotFound(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	_, err := store.GetUserByID(ctx, uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = store.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestLoanLifecycle(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, "borrower@example.com")

	loan := &model.LoanApplication{
		UserID:          user.ID,
		AmountRequested: 250000,
		Features: model.ApplicantFeatures{
			NumDebts:        2,
			TotalDebtAmount: 50000,
			MonthlyEMIs:     5000,
			TotalAssets:     200000,
			MonthlyIncome:   50000,
			CityTier:        model.TierOne,
		},
	}
	require.NoError(t, store.CreateLoanApplication(ctx, loan))

	stored, err := store.GetLoanByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.False(t, stored.Decided)
	assert.Equal(t, model.StatusProcessing, stored.Status)
	assert.Equal(t, loan.Features, stored.Features)

	result := &model.ScoreResult{
		MLProbability:  72.5,
		AcceptanceRate: 80.0,
		Status:         model.StatusApproved,
		Feedback: model.Feedback{
			Overall:   "strong",
			Strengths: []string{"Strong asset-to-debt ratio"},
		},
	}
	require.NoError(t, store.UpdateLoanDecision(ctx, loan.ID, result))

	decided, err := store.GetLoanByID(ctx, loan.ID)
	require.NoError(t, err)
	assert.True(t, decided.Decided)
	assert.Equal(t, model.StatusApproved, decided.Status)
	assert.InDelta(t, 72.5, decided.MLProbability, 0.001)
	assert.InDelta(t, 80.0, decided.AcceptanceRate, 0.001)
	require.NotNil(t, decided.Feedback)
	assert.Equal(t, "strong", decided.Feedback.Overall)
	assert.Equal(t, []string{"Strong asset-to-debt ratio"}, decided.Feedback.Strengths)
}

func TestUpdateLoanDecisionMissing(t *testing.T) {
	store := createTestStorage(t)

	err := store.UpdateLoanDecision(context.Background(), uuid.New(), &model.ScoreResult{
		Status: model.StatusRejected,
	})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetUserLoansOrdering(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, "serial@example.com")

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		loan := &model.LoanApplication{
			UserID:          user.ID,
			AmountRequested: float64(100000 * (i + 1)),
			CreatedAt:       base.Add(time.Duration(i) * time.Minute),
			Features:        model.ApplicantFeatures{MonthlyIncome: 40000, CityTier: model.TierTwo},
		}
		require.NoError(t, store.CreateLoanApplication(ctx, loan))
	}

	loans, err := store.GetUserLoans(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, loans, 3)
	assert.InDelta(t, 300000, loans[0].AmountRequested, 0.001, "newest application first")
	assert.InDelta(t, 100000, loans[2].AmountRequested, 0.001)
}

func TestUploadRoundTrip(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, "uploader@example.com")

	upload := &model.TransactionUpload{
		UserID:   user.ID,
		FileName: "statement.csv",
		Transactions: []model.Transaction{
			{
				Date:        time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
				Description: "Uber ride",
				Category:    model.CategoryTransport,
				Direction:   model.DirectionDebit,
				Amount:      450,
			},
			{
				Date:        time.Date(2025, 7, 2, 0, 0, 0, 0, time.UTC),
				Description: "Salary credit",
				Category:    model.CategoryOthers,
				Direction:   model.DirectionCredit,
				Amount:      50000,
			},
		},
	}
	require.NoError(t, store.SaveTransactionUpload(ctx, upload))

	uploads, err := store.GetUserUploads(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, uploads, 1)
	assert.Equal(t, "statement.csv", uploads[0].FileName)
	require.Len(t, uploads[0].Transactions, 2)
	assert.Equal(t, "Uber ride", uploads[0].Transactions[0].Description)
	assert.Equal(t, model.DirectionCredit, uploads[0].Transactions[1].Direction)
}

func TestLatestBehaviorWins(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()
	user := createTestUser(t, store, "spender@example.com")

	upload := &model.TransactionUpload{UserID: user.ID, FileName: "a.csv"}
	require.NoError(t, store.SaveTransactionUpload(ctx, upload))

	old := &model.StoredBehavior{
		UserID:    user.ID,
		UploadID:  upload.ID,
		CreatedAt: time.Now().UTC().Add(-time.Hour),
		Result: model.BehaviorResult{
			TotalScore:        3,
			Rating:            model.RatingBad,
			CashInflowPattern: model.InflowIrregular,
			CategoryScores: map[model.Category]model.CategoryScore{
				model.CategoryEMI: {Spending: 20000, Percentage: 40, Threshold: 35},
			},
		},
	}
	require.NoError(t, store.SaveBehavior(ctx, old))

	latest := &model.StoredBehavior{
		UserID:   user.ID,
		UploadID: upload.ID,
		Result: model.BehaviorResult{
			TotalScore:              7,
			Rating:                  model.RatingGood,
			CashInflowPattern:       model.InflowRecurring,
			LiquidityResilienceDays: 30,
			TransactionDepthDays:    27,
			HasStableInflow:         true,
			CategoryScores: map[model.Category]model.CategoryScore{
				model.CategoryEMI: {Spending: 5000, Percentage: 10, Threshold: 35, WithinThreshold: true},
			},
		},
	}
	require.NoError(t, store.SaveBehavior(ctx, latest))

	got, err := store.GetLatestBehavior(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RatingGood, got.Result.Rating)
	assert.Equal(t, 7, got.Result.TotalScore)
	assert.True(t, got.Result.HasStableInflow)
	assert.True(t, got.Result.CategoryScores[model.CategoryEMI].WithinThreshold)
}

func TestGetLatestBehaviorMissing(t *testing.T) {
	store := createTestStorage(t)

	_, err := store.GetLatestBehavior(context.Background(), uuid.New())
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestBankCatalog(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	all, err := store.GetAllBanks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 6, "catalog seeded during migration")

	top, err := store.GetTopBanks(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "SBI Bank", top[0].Name)
	assert.GreaterOrEqual(t, top[0].SuccessRate, top[1].SuccessRate)
	assert.GreaterOrEqual(t, top[1].SuccessRate, top[2].SuccessRate)

	trusted, err := store.GetTrustedBanks(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, trusted, 6, "non-positive limit falls back to default")
	assert.Equal(t, "SBI Bank", trusted[0].Name)
	assert.Equal(t, "Bajaj Finserv", trusted[len(trusted)-1].Name)
}

func TestValidationErrors(t *testing.T) {
	store := createTestStorage(t)
	ctx := context.Background()

	err := store.SaveTransactionUpload(ctx, nil)
	assert.ErrorIs(t, err, ErrNilParameter)

	err = store.SaveTransactionUpload(ctx, &model.TransactionUpload{FileName: "x.csv"})
	assert.ErrorIs(t, err, ErrNilID)

	err = store.SaveTransactionUpload(ctx, &model.TransactionUpload{UserID: uuid.New()})
	assert.ErrorIs(t, err, ErrEmptyString)

	//nolint:staticcheck // exercising the nil-context guard
	_, err = store.GetUserByEmail(nil, "x@example.com")
	assert.ErrorIs(t, err, ErrNilContext)
}
