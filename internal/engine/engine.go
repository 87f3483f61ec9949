// Package engine orchestrates the credit decision flow: scoring model,
// acceptance heuristics, behavior analysis, and persistence.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/verdict-finance/verdict/internal/behavior"
	"github.com/verdict-finance/verdict/internal/common"
	"github.com/verdict-finance/verdict/internal/decision"
	"github.com/verdict-finance/verdict/internal/ingest"
	"github.com/verdict-finance/verdict/internal/model"
	"github.com/verdict-finance/verdict/internal/scoring"
	"github.com/verdict-finance/verdict/internal/service"
)

// Engine wires the decision components together. All dependencies are
// injected; the engine owns no global state.
type Engine struct {
	storage    service.Storage
	model      *scoring.Model
	analyzer   *behavior.Analyzer
	calculator *decision.Calculator
	blender    *decision.Blender
	parser     *ingest.Parser
}

// New creates an Engine. Storage and model must be non-nil.
func New(storage service.Storage, scoringModel *scoring.Model, analyzer *behavior.Analyzer) (*Engine, error) {
	if storage == nil {
		return nil, fmt.Errorf("%w: storage", common.ErrMissingConfig)
	}
	if scoringModel == nil {
		return nil, fmt.Errorf("%w: scoring model", common.ErrMissingConfig)
	}
	if analyzer == nil {
		return nil, fmt.Errorf("%w: behavior analyzer", common.ErrMissingConfig)
	}

	return &Engine{
		storage:    storage,
		model:      scoringModel,
		analyzer:   analyzer,
		calculator: decision.NewCalculator(),
		blender:    decision.NewBlender(),
		parser:     ingest.NewParser(),
	}, nil
}

// Decision pairs a score result with the provenance of the underlying
// model prediction.
type Decision struct {
	Result     model.ScoreResult
	Prediction scoring.Prediction
}

// Score runs the full decision pipeline for one applicant without
// touching storage. A nil behaviorResult means no transaction history is
// available.
func (e *Engine) Score(features model.ApplicantFeatures, behaviorResult *model.BehaviorResult) Decision {
	pred := e.model.Predict(features)

	var acceptance float64
	if pred.Source == scoring.SourceFallback {
		// A failed prediction yields the neutral pair rather than
		// heuristics applied to a meaningless probability.
		acceptance = scoring.NeutralProbability
		slog.Warn("prediction failed, using neutral acceptance rate",
			"reason", pred.Reason)
	} else {
		acceptance = e.calculator.Adjust(features, pred.Probability)
	}

	result := e.blender.Decide(features, pred.Probability, acceptance, behaviorResult)
	return Decision{Result: result, Prediction: pred}
}

// ProcessLoanApplication persists a new application, scores it against
// the applicant's latest financial behavior, and stores the decision.
func (e *Engine) ProcessLoanApplication(ctx context.Context, loan *model.LoanApplication) (*Decision, error) {
	if loan == nil {
		return nil, fmt.Errorf("%w: loan", common.ErrMissingConfig)
	}

	if err := e.storage.CreateLoanApplication(ctx, loan); err != nil {
		return nil, fmt.Errorf("failed to create loan application: %w", err)
	}

	var behaviorResult *model.BehaviorResult
	stored, err := e.storage.GetLatestBehavior(ctx, loan.UserID)
	switch {
	case err == nil:
		behaviorResult = &stored.Result
	case errors.Is(err, common.ErrNotFound):
		// First-time applicant; decide on features alone.
	default:
		return nil, fmt.Errorf("failed to load behavior history: %w", err)
	}

	dec := e.Score(loan.Features, behaviorResult)

	err = common.WithRetry(ctx, func() error {
		return e.storage.UpdateLoanDecision(ctx, loan.ID, &dec.Result)
	}, service.RetryOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to store loan decision: %w", err)
	}

	slog.Info("loan application processed",
		"loan_id", loan.ID,
		"user_id", loan.UserID,
		"status", dec.Result.Status,
		"acceptance_rate", dec.Result.AcceptanceRate,
		"prediction_source", dec.Prediction.Source)

	loan.MLProbability = dec.Result.MLProbability
	loan.AcceptanceRate = dec.Result.AcceptanceRate
	loan.Status = dec.Result.Status
	loan.Feedback = &dec.Result.Feedback
	loan.Decided = true

	return &dec, nil
}

// ProcessTransactionUpload ingests one statement file, analyzes it, and
// persists both the upload and the resulting behavior snapshot.
func (e *Engine) ProcessTransactionUpload(ctx context.Context, userID uuid.UUID, fileName string, r io.Reader, monthlyIncome float64) (*model.TransactionUpload, *model.StoredBehavior, error) {
	transactions, err := e.parser.ParseFile(fileName, r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse %s: %w", fileName, err)
	}

	result := e.analyzer.Analyze(transactions, monthlyIncome)

	upload := &model.TransactionUpload{
		UserID:       userID,
		FileName:     fileName,
		Transactions: transactions,
	}
	err = common.WithRetry(ctx, func() error {
		return e.storage.SaveTransactionUpload(ctx, upload)
	}, service.RetryOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to save upload: %w", err)
	}

	stored := &model.StoredBehavior{
		UserID:   userID,
		UploadID: upload.ID,
		Result:   result,
	}
	err = common.WithRetry(ctx, func() error {
		return e.storage.SaveBehavior(ctx, stored)
	}, service.RetryOptions{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to save behavior: %w", err)
	}

	slog.Info("transaction upload processed",
		"user_id", userID,
		"file", fileName,
		"transactions", len(transactions),
		"rating", result.Rating,
		"score", result.TotalScore)

	return upload, stored, nil
}

// AnalyzeTransactions runs the behavior analyzer without persisting
// anything. Used by the CLI for ad-hoc statement inspection.
func (e *Engine) AnalyzeTransactions(transactions []model.Transaction, monthlyIncome float64) model.BehaviorResult {
	return e.analyzer.Analyze(transactions, monthlyIncome)
}

// ParseStatement parses a statement file into transactions.
func (e *Engine) ParseStatement(fileName string, r io.Reader) ([]model.Transaction, error) {
	return e.parser.ParseFile(fileName, r)
}

// GetBehavior returns the user's most recent behavior snapshot.
func (e *Engine) GetBehavior(ctx context.Context, userID uuid.UUID) (*model.StoredBehavior, error) {
	return e.storage.GetLatestBehavior(ctx, userID)
}
