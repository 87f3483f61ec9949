package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/verdict-finance/verdict/internal/model"
)

// SaveTransactionUpload persists one ingested statement. The parsed
// transactions are stored as a JSON document alongside the file name.
func (s *SQLiteStorage) SaveTransactionUpload(ctx context.Context, upload *model.TransactionUpload) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if upload == nil {
		return fmt.Errorf("%w: upload", ErrNilParameter)
	}
	if err := validateID(upload.UserID, "userID"); err != nil {
		return err
	}
	if err := validateString(upload.FileName, "fileName"); err != nil {
		return err
	}

	if upload.ID == uuid.Nil {
		upload.ID = uuid.New()
	}
	if upload.UploadedAt.IsZero() {
		upload.UploadedAt = time.Now().UTC()
	}

	transactions, err := json.Marshal(upload.Transactions)
	if err != nil {
		return fmt.Errorf("failed to encode transactions: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO transaction_uploads (id, user_id, file_name, transactions, uploaded_at)
		VALUES (?, ?, ?, ?, ?)`,
		upload.ID.String(), upload.UserID.String(), upload.FileName,
		string(transactions), upload.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction upload: %w", err)
	}

	return nil
}

// GetUserUploads returns a user's statement uploads, newest first.
func (s *SQLiteStorage) GetUserUploads(ctx context.Context, userID uuid.UUID) ([]model.TransactionUpload, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(userID, "userID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, file_name, transactions, uploaded_at
		FROM transaction_uploads
		WHERE user_id = ?
		ORDER BY uploaded_at DESC`, userID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query uploads: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var uploads []model.TransactionUpload
	for rows.Next() {
		var upload model.TransactionUpload
		var id, uid, transactions string

		err := rows.Scan(&id, &uid, &upload.FileName, &transactions, &upload.UploadedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}

		upload.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid upload id %q: %w", id, err)
		}
		upload.UserID, err = uuid.Parse(uid)
		if err != nil {
			return nil, fmt.Errorf("invalid upload user id %q: %w", uid, err)
		}

		if err := json.Unmarshal([]byte(transactions), &upload.Transactions); err != nil {
			return nil, fmt.Errorf("failed to decode transactions: %w", err)
		}

		uploads = append(uploads, upload)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating uploads: %w", err)
	}

	return uploads, nil
}
