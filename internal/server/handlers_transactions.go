package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/verdict-finance/verdict/internal/common"
	"github.com/verdict-finance/verdict/internal/model"
)

// Statement uploads are bounded; a month of transactions is a few
// kilobytes even as XLSX.
const maxUploadBytes = 10 << 20

type uploadResponse struct {
	ID                uuid.UUID `json:"id"`
	UserID            uuid.UUID `json:"user_id"`
	FileName          string    `json:"file_name"`
	TransactionsCount int       `json:"transactions_count"`
	UploadDate        time.Time `json:"upload_date"`
	Message           string    `json:"message"`
}

type behaviorResponse struct {
	ID                      uuid.UUID                                  `json:"id"`
	UserID                  uuid.UUID                                  `json:"user_id"`
	TotalScore              int                                        `json:"total_score"`
	BehaviorRating          string                                     `json:"behavior_rating"`
	CategoryScores          map[model.Category]model.CategoryScore     `json:"category_scores"`
	CashInflowPattern       string                                     `json:"cash_inflow_pattern"`
	LiquidityResilienceDays int                                        `json:"liquidity_resilience_days"`
	TransactionDepthDays    int                                        `json:"transaction_depth_days"`
	HasStableInflow         bool                                       `json:"has_stable_inflow"`
	CreatedAt               time.Time                                  `json:"created_at"`
}

func toBehaviorResponse(stored *model.StoredBehavior) behaviorResponse {
	return behaviorResponse{
		ID:                      stored.ID,
		UserID:                  stored.UserID,
		TotalScore:              stored.Result.TotalScore,
		BehaviorRating:          string(stored.Result.Rating),
		CategoryScores:          stored.Result.CategoryScores,
		CashInflowPattern:       string(stored.Result.CashInflowPattern),
		LiquidityResilienceDays: stored.Result.LiquidityResilienceDays,
		TransactionDepthDays:    stored.Result.TransactionDepthDays,
		HasStableInflow:         stored.Result.HasStableInflow,
		CreatedAt:               stored.CreatedAt,
	}
}

func (s *Server) handleUploadTransactions(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, common.NewUserError("invalid multipart request", err))
		return
	}

	income, err := strconv.ParseFloat(r.FormValue("monthly_income"), 64)
	if err != nil || income <= 0 {
		writeError(w, common.NewUserError("monthly_income must be a positive number", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, common.NewUserError("statement file is required", err))
		return
	}
	defer func() { _ = file.Close() }()

	upload, stored, err := s.engine.ProcessTransactionUpload(r.Context(), claims.UserID, header.Filename, file, income)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{
		ID:                upload.ID,
		UserID:            stored.UserID,
		FileName:          upload.FileName,
		TransactionsCount: len(upload.Transactions),
		UploadDate:        upload.UploadedAt,
		Message:           "Transaction history analyzed successfully",
	})
}

func (s *Server) handleAnalyzeTransactions(w http.ResponseWriter, r *http.Request) {
	s.serveBehavior(w, r, false)
}

func (s *Server) handleFinancialBehavior(w http.ResponseWriter, r *http.Request) {
	s.serveBehavior(w, r, true)
}

// serveBehavior returns the latest behavior snapshot for a user. When
// softMissing is set, a missing snapshot yields a descriptive payload
// instead of a 404.
func (s *Server) serveBehavior(w http.ResponseWriter, r *http.Request, softMissing bool) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, common.NewUserError("invalid user id", err))
		return
	}
	if userID != claims.UserID {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "not authorized to access this data"})
		return
	}

	stored, err := s.engine.GetBehavior(r.Context(), userID)
	if errors.Is(err, common.ErrNotFound) && softMissing {
		writeJSON(w, http.StatusOK, map[string]string{
			"message": "No financial behavior data available",
			"status":  "not_analyzed",
		})
		return
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toBehaviorResponse(stored))
}
