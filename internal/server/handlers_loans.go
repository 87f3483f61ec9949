package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/verdict-finance/verdict/internal/common"
	"github.com/verdict-finance/verdict/internal/decision"
	"github.com/verdict-finance/verdict/internal/model"
)

type loanApplicationRequest struct {
	AmountRequested float64 `json:"amount_requested"`
	NumDebts        int     `json:"num_debts"`
	TotalDebtAmount float64 `json:"total_debt_amount"`
	MonthlyEMIs     float64 `json:"monthly_emis"`
	TotalAssets     float64 `json:"total_assets"`
	MonthlyIncome   float64 `json:"monthly_income"`
	CityTier        string  `json:"city_tier"`
}

func (r loanApplicationRequest) validate() error {
	switch {
	case r.AmountRequested <= 0:
		return common.NewUserError("amount_requested must be positive", nil)
	case r.NumDebts < 0:
		return common.NewUserError("num_debts cannot be negative", nil)
	case r.TotalDebtAmount < 0 || r.MonthlyEMIs < 0 || r.TotalAssets < 0:
		return common.NewUserError("debt, EMI and asset amounts cannot be negative", nil)
	case r.MonthlyIncome <= 0:
		return common.NewUserError("monthly_income must be positive", nil)
	case !model.CityTier(r.CityTier).Valid():
		return common.NewUserError("city_tier must be tier_1, tier_2 or tier_3", nil)
	}
	return nil
}

type loanDecisionResponse struct {
	LoanID         uuid.UUID      `json:"loan_id"`
	AcceptanceRate float64        `json:"acceptance_rate"`
	MLScore        float64        `json:"ml_score"`
	Status         string         `json:"status"`
	Feedback       model.Feedback `json:"feedback"`
	Message        string         `json:"message"`
}

type loanResponse struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"user_id"`
	AmountRequested float64         `json:"amount_requested"`
	NumDebts        int             `json:"num_debts"`
	TotalDebtAmount float64         `json:"total_debt_amount"`
	MonthlyEMIs     float64         `json:"monthly_emis"`
	TotalAssets     float64         `json:"total_assets"`
	MonthlyIncome   float64         `json:"monthly_income"`
	CityTier        string          `json:"city_tier"`
	MLScore         *float64        `json:"ml_score"`
	AcceptanceRate  *float64        `json:"acceptance_rate"`
	Status          string          `json:"status"`
	Feedback        *model.Feedback `json:"feedback"`
	CreatedAt       time.Time       `json:"created_at"`
}

func toLoanResponse(loan model.LoanApplication) loanResponse {
	resp := loanResponse{
		ID:              loan.ID,
		UserID:          loan.UserID,
		AmountRequested: loan.AmountRequested,
		NumDebts:        loan.Features.NumDebts,
		TotalDebtAmount: loan.Features.TotalDebtAmount,
		MonthlyEMIs:     loan.Features.MonthlyEMIs,
		TotalAssets:     loan.Features.TotalAssets,
		MonthlyIncome:   loan.Features.MonthlyIncome,
		CityTier:        string(loan.Features.CityTier),
		Status:          string(loan.Status),
		Feedback:        loan.Feedback,
		CreatedAt:       loan.CreatedAt,
	}
	if loan.Decided {
		ml := loan.MLProbability
		ar := loan.AcceptanceRate
		resp.MLScore = &ml
		resp.AcceptanceRate = &ar
	}
	return resp
}

func (s *Server) handleApplyLoan(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}

	var req loanApplicationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, err)
		return
	}

	loan := &model.LoanApplication{
		UserID:          claims.UserID,
		AmountRequested: req.AmountRequested,
		Features: model.ApplicantFeatures{
			NumDebts:        req.NumDebts,
			TotalDebtAmount: req.TotalDebtAmount,
			MonthlyEMIs:     req.MonthlyEMIs,
			TotalAssets:     req.TotalAssets,
			MonthlyIncome:   req.MonthlyIncome,
			CityTier:        model.CityTier(req.CityTier),
		},
	}

	dec, err := s.engine.ProcessLoanApplication(r.Context(), loan)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, loanDecisionResponse{
		LoanID:         loan.ID,
		AcceptanceRate: dec.Result.AcceptanceRate,
		MLScore:        dec.Result.MLProbability,
		Status:         string(dec.Result.Status),
		Feedback:       dec.Result.Feedback,
		Message:        decision.DecisionMessages[dec.Result.Status],
	})
}

func (s *Server) handleUserLoans(w http.ResponseWriter, r *http.Request) {
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

	loans, err := s.storage.GetUserLoans(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]loanResponse, 0, len(loans))
	for _, loan := range loans {
		resp = append(resp, toLoanResponse(loan))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleLoanByID(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r)
	if !ok {
		writeError(w, common.ErrUnauthorized)
		return
	}

	loanID, err := uuid.Parse(chi.URLParam(r, "loanID"))
	if err != nil {
		writeError(w, common.NewUserError("invalid loan id", err))
		return
	}

	loan, err := s.storage.GetLoanByID(r.Context(), loanID)
	if err != nil {
		writeError(w, err)
		return
	}
	if loan.UserID != claims.UserID {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: "not authorized to access this data"})
		return
	}

	writeJSON(w, http.StatusOK, toLoanResponse(*loan))
}
