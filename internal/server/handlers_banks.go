package server

import (
	"net/http"
	"strconv"

	"github.com/verdict-finance/verdict/internal/model"
)

func limitParam(r *http.Request) int {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		return 10
	}
	return limit
}

func (s *Server) handleAllBanks(w http.ResponseWriter, r *http.Request) {
	banks, err := s.storage.GetAllBanks(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeBanks(w, banks)
}

func (s *Server) handleTopBanks(w http.ResponseWriter, r *http.Request) {
	banks, err := s.storage.GetTopBanks(r.Context(), limitParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeBanks(w, banks)
}

func (s *Server) handleTrustedBanks(w http.ResponseWriter, r *http.Request) {
	banks, err := s.storage.GetTrustedBanks(r.Context(), limitParam(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeBanks(w, banks)
}

type bankResponse struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	LogoURL         string  `json:"logo_url,omitempty"`
	AvgApprovalTime string  `json:"avg_approval_time"`
	SuccessRate     float64 `json:"success_rate"`
	InterestRateMin float64 `json:"interest_rate_min"`
	InterestRateMax float64 `json:"interest_rate_max"`
	TrustScore      float64 `json:"trust_score"`
	TotalLoans      int     `json:"total_loans"`
	Rating          float64 `json:"rating"`
}

func writeBanks(w http.ResponseWriter, banks []model.Bank) {
	resp := make([]bankResponse, 0, len(banks))
	for _, bank := range banks {
		resp = append(resp, bankResponse{
			ID:              bank.ID.String(),
			Name:            bank.Name,
			LogoURL:         bank.LogoURL,
			AvgApprovalTime: bank.AvgApprovalTime,
			SuccessRate:     bank.SuccessRate,
			InterestRateMin: bank.InterestRateMin,
			InterestRateMax: bank.InterestRateMax,
			TrustScore:      bank.TrustScore,
			TotalLoans:      bank.TotalLoans,
			Rating:          bank.Rating,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
