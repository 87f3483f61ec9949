package model

import (
	"time"

	"github.com/google/uuid"
)

// BehaviorRating is the coarse spending-discipline classification.
type BehaviorRating string

// Behavior rating constants.
const (
	RatingGood    BehaviorRating = "good"
	RatingAverage BehaviorRating = "average"
	RatingBad     BehaviorRating = "bad"
)

// InflowPattern describes how regular the applicant's cash inflow looks.
type InflowPattern string

// Inflow pattern constants.
const (
	InflowRecurring InflowPattern = "recurring"
	InflowIrregular InflowPattern = "irregular"
)

// CategoryScore captures how an applicant's spending in one category
// compares against its configured income-percentage threshold.
type CategoryScore struct {
	Spending        float64 `json:"spending"`
	Percentage      float64 `json:"percentage"` // percent of monthly income
	Threshold       float64 `json:"threshold"`  // percent of monthly income
	WithinThreshold bool    `json:"within_threshold"`
}

// BehaviorResult is the outcome of analyzing one uploaded transaction
// batch. Each new upload supersedes the previous result; consumers always
// read the most recent.
type BehaviorResult struct {
	CategoryScores          map[Category]CategoryScore `json:"category_scores"`
	TotalScore              int                        `json:"total_score"`
	Rating                  BehaviorRating             `json:"rating"`
	CashInflowPattern       InflowPattern              `json:"cash_inflow_pattern"`
	LiquidityResilienceDays int                        `json:"liquidity_resilience_days"`
	TransactionDepthDays    int                        `json:"transaction_depth_days"`
	HasStableInflow         bool                       `json:"has_stable_inflow"`
}

// StoredBehavior is a persisted BehaviorResult with its ownership metadata.
type StoredBehavior struct {
	CreatedAt time.Time
	Result    BehaviorResult
	ID        uuid.UUID
	UserID    uuid.UUID
	UploadID  uuid.UUID
}

// TransactionUpload records one ingested statement file.
type TransactionUpload struct {
	UploadedAt   time.Time
	FileName     string
	Transactions []Transaction
	ID           uuid.UUID
	UserID       uuid.UUID
}
