package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdict-finance/verdict/internal/auth"
	"github.com/verdict-finance/verdict/internal/behavior"
	"github.com/verdict-finance/verdict/internal/category"
	"github.com/verdict-finance/verdict/internal/engine"
	"github.com/verdict-finance/verdict/internal/model"
	"github.com/verdict-finance/verdict/internal/scoring"
	"github.com/verdict-finance/verdict/internal/storage"
)

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, store.Migrate(context.Background()))
	t.Cleanup(func() { _ = store.Close() })

	identity := scoring.Scaler{
		Mean: make([]float64, scoring.FeatureCount),
		Std:  []float64{1, 1, 1, 1, 1, 1},
	}
	points := make([][]float64, 10)
	labels := make([]int, 10)
	for i := range points {
		points[i] = []float64{float64(i), 0, 0, 0, 0, 0}
		labels[i] = 1
	}
	m, err := scoring.New(&scoring.Artifact{Scaler: identity, Points: points, Labels: labels, K: 3})
	require.NoError(t, err)

	analyzer := behavior.NewAnalyzer(category.NewClassifier(), model.DefaultThresholds)
	eng, err := engine.New(store, m, analyzer)
	require.NoError(t, err)

	tokens, err := auth.NewTokenService("test-secret", time.Hour)
	require.NoError(t, err)

	return New(eng, store, tokens, nil).Router()
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), "body: %s", rec.Body.String())
	return v
}

func registerTestUser(t *testing.T, h http.Handler, email string) tokenResponse {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", "", registerRequest{
		Email:    email,
		Password: "hunter2hunter2",
		FullName: "Test User",
		Phone:    "9876543210",
		CityTier: "tier_2",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[tokenResponse](t, rec)
}

func TestHealth(t *testing.T) {
	h := newTestServer(t)
	rec := doJSON(t, h, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRegisterAndMe(t *testing.T) {
	h := newTestServer(t)

	token := registerTestUser(t, h, "alice@example.com")
	assert.Equal(t, "bearer", token.TokenType)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "alice@example.com", token.User.Email)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/users/me", token.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decodeBody[userResponse](t, rec)
	assert.Equal(t, token.User.ID, me.ID)
	assert.Equal(t, "tier_2", me.CityTier)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h := newTestServer(t)
	registerTestUser(t, h, "dup@example.com")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", "", registerRequest{
		Email:    "dup@example.com",
		Password: "hunter2hunter2",
		FullName: "Second User",
		Phone:    "9876543210",
		CityTier: "tier_1",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterValidation(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/register", "", registerRequest{
		Email:    "bad@example.com",
		Password: "hunter2hunter2",
		FullName: "Bad Tier",
		CityTier: "tier_9",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/auth/register", "", registerRequest{
		Email:    "bad2@example.com",
		Password: "short",
		FullName: "Short Password",
		CityTier: "tier_1",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLogin(t *testing.T) {
	h := newTestServer(t)
	registerTestUser(t, h, "login@example.com")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", loginRequest{
		Email:    "login@example.com",
		Password: "hunter2hunter2",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", loginRequest{
		Email:    "login@example.com",
		Password: "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, h, http.MethodPost, "/api/v1/auth/login", "", loginRequest{
		Email:    "ghost@example.com",
		Password: "hunter2hunter2",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "unknown email looks like a wrong password")
}

func TestVerify(t *testing.T) {
	h := newTestServer(t)
	token := registerTestUser(t, h, "verify@example.com")

	rec := doJSON(t, h, http.MethodGet, "/api/v1/auth/verify", token.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, true, body["valid"])
}

func TestProtectedRoutesRejectAnonymous(t *testing.T) {
	h := newTestServer(t)

	for _, path := range []string{
		"/api/v1/users/me",
		"/api/v1/loans/user/" + uuid.NewString(),
		"/api/v1/transactions/analyze/" + uuid.NewString(),
	} {
		rec := doJSON(t, h, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, path)
	}

	rec := doJSON(t, h, http.MethodGet, "/api/v1/users/me", "garbage-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestApplyLoan(t *testing.T) {
	h := newTestServer(t)
	token := registerTestUser(t, h, "borrower@example.com")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/loans/apply", token.AccessToken, loanApplicationRequest{
		AmountRequested: 250000,
		NumDebts:        1,
		TotalDebtAmount: 50000,
		MonthlyEMIs:     5000,
		TotalAssets:     200000,
		MonthlyIncome:   50000,
		CityTier:        "tier_2",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	dec := decodeBody[loanDecisionResponse](t, rec)
	assert.Equal(t, "approved", dec.Status)
	assert.NotEmpty(t, dec.Message)
	assert.GreaterOrEqual(t, dec.AcceptanceRate, 10.0)
	assert.LessOrEqual(t, dec.AcceptanceRate, 95.0)

	// The application is visible on the owner's loan list.
	rec = doJSON(t, h, http.MethodGet, "/api/v1/loans/user/"+token.User.ID.String(), token.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	loans := decodeBody[[]loanResponse](t, rec)
	require.Len(t, loans, 1)
	assert.Equal(t, dec.LoanID, loans[0].ID)
	require.NotNil(t, loans[0].AcceptanceRate)
	assert.InDelta(t, dec.AcceptanceRate, *loans[0].AcceptanceRate, 0.001)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/loans/"+dec.LoanID.String(), token.AccessToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestApplyLoanValidation(t *testing.T) {
	h := newTestServer(t)
	token := registerTestUser(t, h, "invalid@example.com")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/loans/apply", token.AccessToken, loanApplicationRequest{
		AmountRequested: -5,
		MonthlyIncome:   50000,
		CityTier:        "tier_2",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoanOwnership(t *testing.T) {
	h := newTestServer(t)
	owner := registerTestUser(t, h, "owner@example.com")
	other := registerTestUser(t, h, "other@example.com")

	rec := doJSON(t, h, http.MethodPost, "/api/v1/loans/apply", owner.AccessToken, loanApplicationRequest{
		AmountRequested: 100000,
		MonthlyIncome:   40000,
		CityTier:        "tier_2",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	dec := decodeBody[loanDecisionResponse](t, rec)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/loans/user/"+owner.User.ID.String(), other.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/loans/"+dec.LoanID.String(), other.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func uploadStatement(t *testing.T, h http.Handler, token, filename, contents string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("monthly_income", "50000"))
	part, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = fmt.Fprint(part, contents)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transactions/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

const statementCSV = `date,description,amount,type
2025-07-01,Salary credit,50000,credit
2025-07-03,Uber ride to office,450,debit
2025-07-05,BigBasket groceries,2200,debit
2025-07-15,Mid-month salary,50000,credit
2025-07-20,EMI payment HDFC,5000,debit
`

func TestUploadAndAnalyze(t *testing.T) {
	h := newTestServer(t)
	token := registerTestUser(t, h, "uploader@example.com")
	userID := token.User.ID.String()

	// No data yet: the user-facing endpoint degrades gracefully.
	rec := doJSON(t, h, http.MethodGet, "/api/v1/users/financial-behavior/"+userID, token.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	soft := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "not_analyzed", soft["status"])

	// The analyze endpoint 404s instead.
	rec = doJSON(t, h, http.MethodGet, "/api/v1/transactions/analyze/"+userID, token.AccessToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = uploadStatement(t, h, token.AccessToken, "statement.csv", statementCSV)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	up := decodeBody[uploadResponse](t, rec)
	assert.Equal(t, 5, up.TransactionsCount)
	assert.Equal(t, "statement.csv", up.FileName)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/transactions/analyze/"+userID, token.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	beh := decodeBody[behaviorResponse](t, rec)
	assert.NotEmpty(t, beh.BehaviorRating)
	assert.Contains(t, beh.CategoryScores, model.CategoryTransport)
}

func TestUploadRejectsBadRequests(t *testing.T) {
	h := newTestServer(t)
	token := registerTestUser(t, h, "badupload@example.com")

	rec := uploadStatement(t, h, token.AccessToken, "notes.txt", "not a statement")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = uploadStatement(t, h, token.AccessToken, "empty.csv", "date,description,amount,type\n")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBanks(t *testing.T) {
	h := newTestServer(t)

	rec := doJSON(t, h, http.MethodGet, "/api/v1/banks", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	banks := decodeBody[[]bankResponse](t, rec)
	assert.Len(t, banks, 6)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/banks/top?limit=2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	top := decodeBody[[]bankResponse](t, rec)
	require.Len(t, top, 2)
	assert.Equal(t, "SBI Bank", top[0].Name)

	rec = doJSON(t, h, http.MethodGet, "/api/v1/banks/trusted", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	trusted := decodeBody[[]bankResponse](t, rec)
	assert.GreaterOrEqual(t, trusted[0].TrustScore, trusted[1].TrustScore)
}
