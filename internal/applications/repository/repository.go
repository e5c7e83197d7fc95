// Package repository provides database operations for applications.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"admissions_portal_backend/internal/applications/domain"
	"admissions_portal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const applicationNotFoundMsg = "application not found"

// Repository provides database operations for applications, their documents,
// stage history and audit trail.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new applications repository
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a new application together with its first history entry.
func (r *Repository) Create(ctx context.Context, app *domain.Application) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO applications (
			id, version, stage, status, next_actor, next_action, terminal,
			student_name, program, university, partner_id, tracking_number,
			arrival_date, tuition_cents, priority, stage_entered_at, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
		)`

	_, err = tx.Exec(ctx, query,
		app.ID, app.Version, int(app.Stage), app.Status, string(app.NextActor), app.NextAction,
		app.Terminal, app.StudentName, app.Program, app.University, app.PartnerID,
		app.TrackingNumber, app.ArrivalDate, app.TuitionCents, string(app.Priority),
		app.StageEnteredAt, app.CreatedAt, app.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create application: %w", err)
	}

	for _, entry := range app.StageHistory {
		if err := insertHistory(ctx, tx, app.ID, entry); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit application create: %w", err)
	}

	return nil
}

// GetByID loads an application with its documents and stage history.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	var app domain.Application
	var stage int
	var nextActor, priority string

	query := `SELECT id, version, stage, status, next_actor, next_action, terminal,
		student_name, program, university, partner_id, tracking_number, arrival_date,
		tuition_cents, priority, stage_entered_at, created_at, updated_at
		FROM applications WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&app.ID, &app.Version, &stage, &app.Status, &nextActor, &app.NextAction, &app.Terminal,
		&app.StudentName, &app.Program, &app.University, &app.PartnerID, &app.TrackingNumber,
		&app.ArrivalDate, &app.TuitionCents, &priority, &app.StageEnteredAt, &app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(applicationNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get application: %w", err)
	}

	app.Stage = domain.Stage(stage)
	app.NextActor = domain.Actor(nextActor)
	app.Priority = domain.Priority(priority)

	if app.Documents, err = r.listDocuments(ctx, id); err != nil {
		return nil, err
	}
	if app.StageHistory, err = r.listHistory(ctx, id); err != nil {
		return nil, err
	}

	return &app, nil
}

// CommitTransition persists an already-applied change using compare-and-swap
// on the version column. The application must carry its new state, including
// the bumped version; expectedVersion is the version the change was validated
// against. A concurrent writer advancing the row in between yields a conflict.
func (r *Repository) CommitTransition(ctx context.Context, app *domain.Application, expectedVersion int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		UPDATE applications SET
			version = $2,
			stage = $3,
			status = $4,
			next_actor = $5,
			next_action = $6,
			terminal = $7,
			tracking_number = $8,
			arrival_date = $9,
			stage_entered_at = $10,
			updated_at = $11
		WHERE id = $1 AND version = $12`

	result, err := tx.Exec(ctx, query,
		app.ID, app.Version, int(app.Stage), app.Status, string(app.NextActor), app.NextAction,
		app.Terminal, app.TrackingNumber, app.ArrivalDate, app.StageEnteredAt, app.UpdatedAt,
		expectedVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to commit transition: %w", err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM applications WHERE id = $1)`, app.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check application existence: %w", err)
		}
		if !exists {
			return apperr.NotFound(applicationNotFoundMsg)
		}
		return apperr.Conflict("application was modified concurrently, reload and retry")
	}

	// Persist only the history entries appended by this change. Earlier
	// entries are already on disk.
	persisted := int(expectedVersion)
	for i := persisted; i < len(app.StageHistory); i++ {
		if err := insertHistory(ctx, tx, app.ID, app.StageHistory[i]); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transition: %w", err)
	}

	return nil
}

func insertHistory(ctx context.Context, tx pgx.Tx, applicationID uuid.UUID, entry domain.HistoryEntry) error {
	query := `
		INSERT INTO stage_history (
			application_id, stage, status, actor, reason, notes, documents, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := tx.Exec(ctx, query,
		applicationID, int(entry.Stage), entry.Status, string(entry.Actor),
		entry.Reason, entry.Notes, textArray(entry.Documents), entry.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to insert history entry: %w", err)
	}
	return nil
}

// textArray coalesces a nil slice to an empty one. pgx encodes a nil slice
// as SQL NULL, which the NOT NULL text[] columns reject.
func textArray(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (r *Repository) listHistory(ctx context.Context, applicationID uuid.UUID) ([]domain.HistoryEntry, error) {
	query := `SELECT stage, status, actor, reason, notes, documents, created_at
		FROM stage_history WHERE application_id = $1 ORDER BY created_at, id`

	rows, err := r.pool.Query(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		var stage int
		var actor string
		if err := rows.Scan(&stage, &e.Status, &actor, &e.Reason, &e.Notes, &e.Documents, &e.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		e.Stage = domain.Stage(stage)
		e.Actor = domain.Actor(actor)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// AddDocument records a document against an application.
func (r *Repository) AddDocument(ctx context.Context, applicationID uuid.UUID, doc *domain.Document) error {
	query := `
		INSERT INTO application_documents (
			id, application_id, type, file_name, file_key, uploaded_by, generated_by, uploaded_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		doc.ID, applicationID, string(doc.Type), doc.FileName, doc.FileKey,
		string(doc.UploadedBy), doc.GeneratedBy, doc.UploadedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to add document: %w", err)
	}
	return nil
}

func (r *Repository) listDocuments(ctx context.Context, applicationID uuid.UUID) ([]domain.Document, error) {
	query := `SELECT id, type, file_name, file_key, uploaded_by, generated_by, uploaded_at
		FROM application_documents WHERE application_id = $1 ORDER BY uploaded_at, id`

	rows, err := r.pool.Query(ctx, query, applicationID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		var d domain.Document
		var docType, uploadedBy string
		if err := rows.Scan(&d.ID, &docType, &d.FileName, &d.FileKey, &uploadedBy, &d.GeneratedBy, &d.UploadedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		d.Type = domain.DocumentType(docType)
		d.UploadedBy = domain.Actor(uploadedBy)
		docs = append(docs, d)
	}

	return docs, rows.Err()
}

// AuditEntry is one row of the transition audit trail. Unlike stage history,
// the audit trail records denied attempts too.
type AuditEntry struct {
	ID            uuid.UUID
	ApplicationID uuid.UUID
	Actor         string
	FromStage     int
	FromStatus    string
	Target        string
	Allowed       bool
	DenialCode    string
	Errors        []string
	CreatedAt     time.Time
}

// AppendAudit records one transition attempt. Audit writes are best-effort
// observers of the workflow; callers log failures and move on.
func (r *Repository) AppendAudit(ctx context.Context, entry *AuditEntry) error {
	query := `
		INSERT INTO transition_audit (
			id, application_id, actor, from_stage, from_status, target, allowed, denial_code, errors, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.ApplicationID, entry.Actor, entry.FromStage, entry.FromStatus,
		entry.Target, entry.Allowed, entry.DenialCode, textArray(entry.Errors), entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// ListIdleHighPriority returns the IDs of non-terminal high-priority
// applications whose stage clock started before the cutoff. Used by the
// scheduler's SLA scan.
func (r *Repository) ListIdleHighPriority(ctx context.Context, cutoff time.Time, limit int) ([]uuid.UUID, error) {
	query := `SELECT id FROM applications
		WHERE priority = 'high' AND terminal = false AND stage_entered_at <= $1
		ORDER BY stage_entered_at
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list idle applications: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan application id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// ListByPartner returns a partner's applications, newest first.
func (r *Repository) ListByPartner(ctx context.Context, partnerID uuid.UUID) ([]*domain.Application, error) {
	query := `SELECT id FROM applications WHERE partner_id = $1 ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query, partnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan application id: %w", err)
		}
		ids = append(ids, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	apps := make([]*domain.Application, 0, len(ids))
	for _, id := range ids {
		app, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}

	return apps, nil
}
