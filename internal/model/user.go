package model

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered loan applicant.
type User struct {
	CreatedAt    time.Time
	Email        string
	PasswordHash string
	FullName     string
	Phone        string
	Address      string
	CityTier     CityTier
	ID           uuid.UUID
}

// LoanApplication is a persisted loan request together with its decision,
// once one has been computed.
type LoanApplication struct {
	CreatedAt       time.Time
	Status          LoanStatus
	Feedback        *Feedback
	AmountRequested float64
	Features        ApplicantFeatures
	MLProbability   float64
	AcceptanceRate  float64
	ID              uuid.UUID
	UserID          uuid.UUID
	Decided         bool
}

// Bank is an entry in the partner-bank catalog surfaced to applicants.
type Bank struct {
	Name            string
	LogoURL         string
	AvgApprovalTime string
	SuccessRate     float64
	InterestRateMin float64
	InterestRateMax float64
	TrustScore      float64
	Rating          float64
	TotalLoans      int
	ID              uuid.UUID
}
