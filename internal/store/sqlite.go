package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dvillagrablanco/inmova-app-sub030/internal/models"
	"github.com/dvillagrablanco/inmova-app-sub030/pkg/errors"
	"github.com/dvillagrablanco/inmova-app-sub030/pkg/logger"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore implements the Store interface over a SQLite database.
// Amounts are persisted as decimal strings to avoid float drift.
type SQLiteStore struct {
	db     *sql.DB
	logger logger.Logger
}

// Compile-time check that SQLiteStore implements Store
var _ Store = (*SQLiteStore)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS transactions (
	id            TEXT PRIMARY KEY,
	posted_at     TIMESTAMP NOT NULL,
	amount        TEXT NOT NULL,
	description   TEXT NOT NULL DEFAULT '',
	reference     TEXT NOT NULL DEFAULT '',
	status        TEXT NOT NULL DEFAULT 'pending_review',
	obligation_id TEXT,
	match_score   INTEGER,
	reconciled_by TEXT,
	reconciled_at TIMESTAMP,
	note          TEXT,
	FOREIGN KEY (obligation_id) REFERENCES obligations(id)
);

CREATE TABLE IF NOT EXISTS obligations (
	id             TEXT PRIMARY KEY,
	amount         TEXT NOT NULL,
	due_date       TIMESTAMP NOT NULL,
	status         TEXT NOT NULL DEFAULT 'pending',
	tenant_name    TEXT NOT NULL DEFAULT '',
	unit_ref       TEXT NOT NULL DEFAULT '',
	paid_at        TIMESTAMP,
	payment_method TEXT
);

CREATE INDEX IF NOT EXISTS idx_transactions_status ON transactions(status, obligation_id);
CREATE INDEX IF NOT EXISTS idx_obligations_status ON obligations(status);
`

// NewSQLiteStore opens (or creates) a SQLite store at the given path.
// Use ":memory:" for an ephemeral store in tests.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, errors.StorageError(errors.CodeStoreUnavailable, "open", err).
			WithContext("db_path", dbPath)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return nil, errors.StorageError(errors.CodeStoreUnavailable, "open", err).
			WithContext("db_path", dbPath)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, errors.StorageError(errors.CodeStoreUnavailable, "migrate", err).
			WithContext("db_path", dbPath)
	}

	return &SQLiteStore{
		db:     db,
		logger: logger.GetGlobalLogger().WithComponent("sqlite_store"),
	}, nil
}

// Close closes the database connection
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for seeding and tests.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// ListUnmatchedTransactions returns credit transactions in pending_review with
// no linked obligation, ordered by posted date descending. The exclusion of
// already-linked rows is the engine's idempotence guard.
func (s *SQLiteStore) ListUnmatchedTransactions(ctx context.Context, limit int) ([]*models.Transaction, error) {
	query := `
		SELECT id, posted_at, amount, description, reference, status
		FROM transactions
		WHERE status = ? AND obligation_id IS NULL AND CAST(amount AS REAL) > 0
		ORDER BY posted_at DESC`
	args := []interface{}{string(models.TransactionPendingReview)}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.StorageError(errors.CodeQueryFailed, "list_unmatched_transactions", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		var tx models.Transaction
		var amount string
		var status string

		if err := rows.Scan(&tx.ID, &tx.PostedAt, &amount, &tx.Description, &tx.Reference, &status); err != nil {
			return nil, errors.StorageError(errors.CodeQueryFailed, "list_unmatched_transactions", err)
		}

		tx.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			s.logger.WithError(err).WithField("transaction_id", tx.ID).Warn("Skipping transaction with malformed amount")
			continue
		}
		tx.Status = models.TransactionStatus(status)

		transactions = append(transactions, &tx)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.StorageError(errors.CodeQueryFailed, "list_unmatched_transactions", err)
	}

	return transactions, nil
}

// ListOpenObligations returns pending or overdue obligations that no
// transaction has claimed, ordered by due date ascending.
func (s *SQLiteStore) ListOpenObligations(ctx context.Context, limit int) ([]*models.Obligation, error) {
	query := `
		SELECT o.id, o.amount, o.due_date, o.status, o.tenant_name, o.unit_ref
		FROM obligations o
		WHERE o.status IN (?, ?)
		  AND NOT EXISTS (
			SELECT 1 FROM transactions t WHERE t.obligation_id = o.id
		  )
		ORDER BY o.due_date ASC`
	args := []interface{}{string(models.ObligationPending), string(models.ObligationOverdue)}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.StorageError(errors.CodeQueryFailed, "list_open_obligations", err)
	}
	defer rows.Close()

	var obligations []*models.Obligation
	for rows.Next() {
		var obl models.Obligation
		var amount string
		var status string

		if err := rows.Scan(&obl.ID, &amount, &obl.DueDate, &status, &obl.TenantName, &obl.UnitRef); err != nil {
			return nil, errors.StorageError(errors.CodeQueryFailed, "list_open_obligations", err)
		}

		obl.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			s.logger.WithError(err).WithField("obligation_id", obl.ID).Warn("Skipping obligation with malformed amount")
			continue
		}
		obl.Status = models.ObligationStatus(status)

		obligations = append(obligations, &obl)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.StorageError(errors.CodeQueryFailed, "list_open_obligations", err)
	}

	return obligations, nil
}

// ApplyMatch performs the paired state transition inside one SQL transaction.
// Both conditional UPDATEs must hit exactly one unclaimed row; otherwise the
// transaction rolls back and the pair is reported as already claimed. This is
// the optimistic guard against two invocations racing for the same records.
func (s *SQLiteStore) ApplyMatch(ctx context.Context, transactionID, obligationID string, confidence int, reason, actor string) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.ApplyError(errors.CodeApplyFailed, transactionID, obligationID, err)
	}
	defer func() { _ = dbTx.Rollback() }()

	now := time.Now().UTC()
	note := fmt.Sprintf("auto-reconciled by %s (confidence %d): %s", actor, confidence, reason)

	res, err := dbTx.ExecContext(ctx, `
		UPDATE transactions
		SET status = ?, obligation_id = ?, match_score = ?, reconciled_by = ?, reconciled_at = ?, note = ?
		WHERE id = ? AND status = ? AND obligation_id IS NULL`,
		string(models.TransactionReconciled), obligationID, confidence, actor, now, note,
		transactionID, string(models.TransactionPendingReview))
	if err != nil {
		return errors.ApplyError(errors.CodeApplyFailed, transactionID, obligationID, err)
	}

	if affected, _ := res.RowsAffected(); affected != 1 {
		return errors.ApplyError(errors.CodeAlreadyClaimed, transactionID, obligationID, nil)
	}

	res, err = dbTx.ExecContext(ctx, `
		UPDATE obligations
		SET status = ?, paid_at = ?, payment_method = ?
		WHERE id = ? AND status IN (?, ?)`,
		string(models.ObligationPaid), now, "bank_transfer",
		obligationID, string(models.ObligationPending), string(models.ObligationOverdue))
	if err != nil {
		return errors.ApplyError(errors.CodeApplyFailed, transactionID, obligationID, err)
	}

	if affected, _ := res.RowsAffected(); affected != 1 {
		return errors.ApplyError(errors.CodeAlreadyClaimed, transactionID, obligationID, nil)
	}

	if err := dbTx.Commit(); err != nil {
		return errors.ApplyError(errors.CodeStoreConflict, transactionID, obligationID, err)
	}

	s.logger.WithFields(logger.Fields{
		"transaction_id": transactionID,
		"obligation_id":  obligationID,
		"confidence":     confidence,
	}).Info("Applied match")

	return nil
}

// InsertTransaction inserts a transaction row. Used by the feed collaborator
// and by tests to seed the store.
func (s *SQLiteStore) InsertTransaction(ctx context.Context, tx *models.Transaction) error {
	if err := tx.Validate(); err != nil {
		return errors.InputError(errors.CodeInvalidRecord, tx.ID, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO transactions (id, posted_at, amount, description, reference, status)
		VALUES (?, ?, ?, ?, ?, ?)`,
		tx.ID, tx.PostedAt, tx.Amount.String(), tx.Description, tx.Reference, string(tx.Status))
	if err != nil {
		return errors.StorageError(errors.CodeQueryFailed, "insert_transaction", err).
			WithContext("transaction_id", tx.ID)
	}

	return nil
}

// InsertObligation inserts an obligation row. Used by the billing collaborator
// and by tests to seed the store.
func (s *SQLiteStore) InsertObligation(ctx context.Context, obl *models.Obligation) error {
	if err := obl.Validate(); err != nil {
		return errors.InputError(errors.CodeInvalidRecord, obl.ID, err)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO obligations (id, amount, due_date, status, tenant_name, unit_ref)
		VALUES (?, ?, ?, ?, ?, ?)`,
		obl.ID, obl.Amount.String(), obl.DueDate, string(obl.Status), obl.TenantName, obl.UnitRef)
	if err != nil {
		return errors.StorageError(errors.CodeQueryFailed, "insert_obligation", err).
			WithContext("obligation_id", obl.ID)
	}

	return nil
}

// GetTransaction fetches one transaction by id, including reconciliation
// fields. Returns a storage error when the id does not exist.
func (s *SQLiteStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	var tx models.Transaction
	var amount, status string
	var obligationID, reconciledBy, note sql.NullString
	var matchScore sql.NullInt64
	var reconciledAt sql.NullTime

	err := s.db.QueryRowContext(ctx, `
		SELECT id, posted_at, amount, description, reference, status,
		       obligation_id, match_score, reconciled_by, reconciled_at, note
		FROM transactions WHERE id = ?`, id).
		Scan(&tx.ID, &tx.PostedAt, &amount, &tx.Description, &tx.Reference, &status,
			&obligationID, &matchScore, &reconciledBy, &reconciledAt, &note)
	if err != nil {
		return nil, errors.StorageError(errors.CodeQueryFailed, "get_transaction", err).
			WithContext("transaction_id", id)
	}

	tx.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, errors.StorageError(errors.CodeQueryFailed, "get_transaction", err).
			WithContext("transaction_id", id)
	}
	tx.Status = models.TransactionStatus(status)
	tx.ObligationID = obligationID.String
	tx.MatchScore = int(matchScore.Int64)
	tx.ReconciledBy = reconciledBy.String
	tx.Note = note.String
	if reconciledAt.Valid {
		tx.ReconciledAt = reconciledAt.Time
	}

	return &tx, nil
}

// GetObligation fetches one obligation by id together with its linked
// transaction ids.
func (s *SQLiteStore) GetObligation(ctx context.Context, id string) (*models.Obligation, error) {
	var obl models.Obligation
	var amount, status string
	var paidAt sql.NullTime
	var paymentMethod sql.NullString

	err := s.db.QueryRowContext(ctx, `
		SELECT id, amount, due_date, status, tenant_name, unit_ref, paid_at, payment_method
		FROM obligations WHERE id = ?`, id).
		Scan(&obl.ID, &amount, &obl.DueDate, &status, &obl.TenantName, &obl.UnitRef, &paidAt, &paymentMethod)
	if err != nil {
		return nil, errors.StorageError(errors.CodeQueryFailed, "get_obligation", err).
			WithContext("obligation_id", id)
	}

	obl.Amount, err = decimal.NewFromString(amount)
	if err != nil {
		return nil, errors.StorageError(errors.CodeQueryFailed, "get_obligation", err).
			WithContext("obligation_id", id)
	}
	obl.Status = models.ObligationStatus(status)
	obl.PaymentMethod = paymentMethod.String
	if paidAt.Valid {
		obl.PaidAt = paidAt.Time
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id FROM transactions WHERE obligation_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, errors.StorageError(errors.CodeQueryFailed, "get_obligation", err).
			WithContext("obligation_id", id)
	}
	defer rows.Close()

	for rows.Next() {
		var txID string
		if err := rows.Scan(&txID); err != nil {
			return nil, errors.StorageError(errors.CodeQueryFailed, "get_obligation", err)
		}
		obl.LinkedTransactionIDs = append(obl.LinkedTransactionIDs, txID)
	}

	return &obl, rows.Err()
}
