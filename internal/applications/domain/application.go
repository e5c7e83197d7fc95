package domain

import (
	"time"

	"github.com/google/uuid"
)

// Document is a file recorded against an application, either uploaded by a
// party or generated by the workflow itself.
type Document struct {
	ID          uuid.UUID
	Type        DocumentType
	FileName    string
	FileKey     string
	UploadedBy  Actor
	GeneratedBy string // template key for workflow-generated documents
	UploadedAt  time.Time
}

// HistoryEntry is one row of the append-only stage history. Entries always
// record the resulting (stage, status) of a transition, never intermediate
// pairs replaced by stage composition.
type HistoryEntry struct {
	Stage     Stage
	Status    string
	Actor     Actor
	Reason    string
	Notes     string
	Documents []string
	Timestamp time.Time
}

// Application is the tracked entity moving through the five-stage workflow.
// Version is the optimistic-concurrency token: every persisted change
// increments it, and commits are rejected when the persisted version has
// advanced since the transition was validated.
type Application struct {
	ID      uuid.UUID
	Version int64

	Stage      Stage
	Status     string
	NextActor  Actor
	NextAction string
	Terminal   bool

	StudentName    string
	Program        string
	University     string
	PartnerID      uuid.UUID
	TrackingNumber string
	ArrivalDate    string // ISO YYYY-MM-DD once confirmed
	TuitionCents   int64
	Priority       Priority

	Documents    []Document
	StageHistory []HistoryEntry

	StageEnteredAt time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// HasDocument reports whether a document of the given type is recorded.
func (a *Application) HasDocument(t DocumentType) bool {
	for _, d := range a.Documents {
		if d.Type == t {
			return true
		}
	}
	return false
}

// MissingDocuments returns the subset of required that is not yet recorded.
func (a *Application) MissingDocuments(required []DocumentType) []DocumentType {
	var missing []DocumentType
	for _, t := range required {
		if !a.HasDocument(t) {
			missing = append(missing, t)
		}
	}
	return missing
}

// IdleIn returns how long the application has been sitting in its current
// stage as of now.
func (a *Application) IdleIn(now time.Time) time.Duration {
	if a.StageEnteredAt.IsZero() {
		return 0
	}
	return now.Sub(a.StageEnteredAt)
}

// AuxData carries the caller-supplied auxiliary inputs of one transition
// attempt. It is ephemeral: constructed per attempt, consumed by the rule
// pipeline, and discarded.
type AuxData struct {
	Reason          string
	Notes           string
	ArrivalDate     string
	TrackingNumber  string
	ReceiptFileName string
	DocumentNames   []string
	Confirmed       bool
}
