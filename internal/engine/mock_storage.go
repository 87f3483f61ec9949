package engine

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/verdict-finance/verdict/internal/common"
	"github.com/verdict-finance/verdict/internal/model"
)

// MockStorage is an in-memory Storage implementation for tests.
type MockStorage struct {
	mu        sync.Mutex
	users     map[uuid.UUID]model.User
	loans     map[uuid.UUID]model.LoanApplication
	uploads   []model.TransactionUpload
	behaviors []model.StoredBehavior
	banks     []model.Bank

	// UpdateDecisionErr, when set, fails UpdateLoanDecision this many
	// times before succeeding. Used to exercise retry behavior.
	UpdateDecisionErr   error
	UpdateDecisionFails int
}

// NewMockStorage creates an empty in-memory storage.
func NewMockStorage() *MockStorage {
	return &MockStorage{
		users: make(map[uuid.UUID]model.User),
		loans: make(map[uuid.UUID]model.LoanApplication),
	}
}

func (m *MockStorage) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	for _, existing := range m.users {
		if existing.Email == user.Email {
			return common.ErrDuplicateEntry
		}
	}
	m.users[user.ID] = *user
	return nil
}

func (m *MockStorage) GetUserByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &user, nil
}

func (m *MockStorage) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *MockStorage) CreateLoanApplication(_ context.Context, loan *model.LoanApplication) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if loan.ID == uuid.Nil {
		loan.ID = uuid.New()
	}
	m.loans[loan.ID] = *loan
	return nil
}

func (m *MockStorage) GetLoanByID(_ context.Context, id uuid.UUID) (*model.LoanApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	loan, ok := m.loans[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &loan, nil
}

func (m *MockStorage) GetUserLoans(_ context.Context, userID uuid.UUID) ([]model.LoanApplication, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var loans []model.LoanApplication
	for _, loan := range m.loans {
		if loan.UserID == userID {
			loans = append(loans, loan)
		}
	}
	return loans, nil
}

func (m *MockStorage) UpdateLoanDecision(_ context.Context, id uuid.UUID, result *model.ScoreResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateDecisionFails > 0 {
		m.UpdateDecisionFails--
		return m.UpdateDecisionErr
	}
	loan, ok := m.loans[id]
	if !ok {
		return common.ErrNotFound
	}
	loan.MLProbability = result.MLProbability
	loan.AcceptanceRate = result.AcceptanceRate
	loan.Status = result.Status
	fb := result.Feedback
	loan.Feedback = &fb
	loan.Decided = true
	m.loans[id] = loan
	return nil
}

func (m *MockStorage) SaveTransactionUpload(_ context.Context, upload *model.TransactionUpload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if upload.ID == uuid.Nil {
		upload.ID = uuid.New()
	}
	m.uploads = append(m.uploads, *upload)
	return nil
}

func (m *MockStorage) GetUserUploads(_ context.Context, userID uuid.UUID) ([]model.TransactionUpload, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var uploads []model.TransactionUpload
	for _, upload := range m.uploads {
		if upload.UserID == userID {
			uploads = append(uploads, upload)
		}
	}
	return uploads, nil
}

func (m *MockStorage) SaveBehavior(_ context.Context, behavior *model.StoredBehavior) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if behavior.ID == uuid.Nil {
		behavior.ID = uuid.New()
	}
	m.behaviors = append(m.behaviors, *behavior)
	return nil
}

func (m *MockStorage) GetLatestBehavior(_ context.Context, userID uuid.UUID) (*model.StoredBehavior, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.behaviors) - 1; i >= 0; i-- {
		if m.behaviors[i].UserID == userID {
			b := m.behaviors[i]
			return &b, nil
		}
	}
	return nil, common.ErrNotFound
}

func (m *MockStorage) GetAllBanks(_ context.Context) ([]model.Bank, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Bank(nil), m.banks...), nil
}

func (m *MockStorage) GetTopBanks(_ context.Context, limit int) ([]model.Bank, error) {
	return m.GetAllBanks(context.Background())
}

func (m *MockStorage) GetTrustedBanks(_ context.Context, limit int) ([]model.Bank, error) {
	return m.GetAllBanks(context.Background())
}

func (m *MockStorage) Migrate(_ context.Context) error { return nil }

func (m *MockStorage) Close() error { return nil }
