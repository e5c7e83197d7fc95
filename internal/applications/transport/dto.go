// Package transport defines the HTTP request and response shapes of the
// applications module.
package transport

import (
	"time"

	"admissions_portal_backend/internal/applications/domain"
	"admissions_portal_backend/internal/applications/service"

	"github.com/google/uuid"
)

// CreateApplicationRequest is the request body for opening an application.
// PartnerID is only honored for admin callers; partners always create
// applications under their own ID.
type CreateApplicationRequest struct {
	StudentName  string     `json:"studentName" validate:"required,min=2,max=200"`
	Program      string     `json:"program" validate:"required,min=2,max=200"`
	University   string     `json:"university,omitempty" validate:"max=200"`
	PartnerID    *uuid.UUID `json:"partnerId,omitempty"`
	TuitionCents int64      `json:"tuitionCents,omitempty" validate:"gte=0"`
	Priority     string     `json:"priority,omitempty" validate:"omitempty,oneof=normal high"`
}

// AttemptTransitionRequest is the request body for a transition attempt.
// The optional fields are the auxiliary data consumed by the rule pipeline.
type AttemptTransitionRequest struct {
	Target          string   `json:"target" validate:"required,min=1,max=100"`
	Reason          string   `json:"reason,omitempty" validate:"max=2000"`
	Notes           string   `json:"notes,omitempty" validate:"max=2000"`
	ArrivalDate     string   `json:"arrivalDate,omitempty" validate:"max=10"`
	TrackingNumber  string   `json:"trackingNumber,omitempty" validate:"max=100"`
	ReceiptFileName string   `json:"receiptFileName,omitempty" validate:"max=300"`
	DocumentNames   []string `json:"documentNames,omitempty" validate:"max=20,dive,max=300"`
	Confirmed       bool     `json:"confirmed,omitempty"`
}

// AuxData converts the request's auxiliary fields to the domain type.
func (r AttemptTransitionRequest) AuxData() domain.AuxData {
	return domain.AuxData{
		Reason:          r.Reason,
		Notes:           r.Notes,
		ArrivalDate:     r.ArrivalDate,
		TrackingNumber:  r.TrackingNumber,
		ReceiptFileName: r.ReceiptFileName,
		DocumentNames:   r.DocumentNames,
		Confirmed:       r.Confirmed,
	}
}

// PresignUploadRequest asks for a presigned upload URL for one document.
type PresignUploadRequest struct {
	DocumentType string `json:"documentType" validate:"required,oneof=passport transcript diploma english_test offer_letter payment_request payment_receipt visa_scan enrollment_letter invoice"`
	FileName     string `json:"fileName" validate:"required,min=3,max=300"`
}

// PresignUploadResponse carries the presigned PUT URL the client uploads to.
type PresignUploadResponse struct {
	UploadURL string    `json:"uploadUrl"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ConfirmDocumentRequest records a completed upload against the application.
type ConfirmDocumentRequest struct {
	DocumentType string `json:"documentType" validate:"required,oneof=passport transcript diploma english_test offer_letter payment_request payment_receipt visa_scan enrollment_letter invoice"`
	FileName     string `json:"fileName" validate:"required,min=3,max=300"`
	FileKey      string `json:"fileKey" validate:"required,min=3,max=500"`
}

// DocumentResponse is one document record.
type DocumentResponse struct {
	ID          uuid.UUID `json:"id"`
	Type        string    `json:"type"`
	FileName    string    `json:"fileName"`
	FileKey     string    `json:"fileKey"`
	UploadedBy  string    `json:"uploadedBy,omitempty"`
	GeneratedBy string    `json:"generatedBy,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// HistoryEntryResponse is one stage-history row.
type HistoryEntryResponse struct {
	Stage     int       `json:"stage"`
	Status    string    `json:"status"`
	Actor     string    `json:"actor"`
	Reason    string    `json:"reason,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Documents []string  `json:"documents,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ApplicationResponse is the full application view.
type ApplicationResponse struct {
	ID         uuid.UUID `json:"id"`
	Version    int64     `json:"version"`
	Stage      int       `json:"stage"`
	Status     string    `json:"status"`
	NextActor  string    `json:"nextActor,omitempty"`
	NextAction string    `json:"nextAction,omitempty"`
	Terminal   bool      `json:"terminal"`

	StudentName    string    `json:"studentName"`
	Program        string    `json:"program"`
	University     string    `json:"university,omitempty"`
	PartnerID      uuid.UUID `json:"partnerId"`
	TrackingNumber string    `json:"trackingNumber,omitempty"`
	ArrivalDate    string    `json:"arrivalDate,omitempty"`
	TuitionCents   int64     `json:"tuitionCents,omitempty"`
	Priority       string    `json:"priority"`

	Documents []DocumentResponse `json:"documents"`

	StageEnteredAt time.Time `json:"stageEnteredAt"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TargetOptionResponse describes one available transition for the caller.
type TargetOptionResponse struct {
	Target               string   `json:"target"`
	RequiresReason       bool     `json:"requiresReason,omitempty"`
	RequiresConfirmation bool     `json:"requiresConfirmation,omitempty"`
	RequiresDate         bool     `json:"requiresDate,omitempty"`
	RequiresTracking     bool     `json:"requiresTracking,omitempty"`
	RequiredDocuments    []string `json:"requiredDocuments,omitempty"`
}

// DenialResponse explains a denied transition.
type DenialResponse struct {
	Code   string `json:"code"`
	Reason string `json:"reason"`
}

// TransitionResultResponse is the outcome of a transition attempt.
type TransitionResultResponse struct {
	Applied     bool                 `json:"applied"`
	Denial      *DenialResponse      `json:"denial,omitempty"`
	Errors      []string             `json:"errors,omitempty"`
	Warnings    []string             `json:"warnings,omitempty"`
	Application *ApplicationResponse `json:"application,omitempty"`
}

// ToApplicationResponse maps a domain application to its HTTP view.
func ToApplicationResponse(app *domain.Application) *ApplicationResponse {
	docs := make([]DocumentResponse, len(app.Documents))
	for i, d := range app.Documents {
		docs[i] = DocumentResponse{
			ID:          d.ID,
			Type:        string(d.Type),
			FileName:    d.FileName,
			FileKey:     d.FileKey,
			UploadedBy:  string(d.UploadedBy),
			GeneratedBy: d.GeneratedBy,
			UploadedAt:  d.UploadedAt,
		}
	}

	return &ApplicationResponse{
		ID:         app.ID,
		Version:    app.Version,
		Stage:      int(app.Stage),
		Status:     app.Status,
		NextActor:  string(app.NextActor),
		NextAction: app.NextAction,
		Terminal:   app.Terminal,

		StudentName:    app.StudentName,
		Program:        app.Program,
		University:     app.University,
		PartnerID:      app.PartnerID,
		TrackingNumber: app.TrackingNumber,
		ArrivalDate:    app.ArrivalDate,
		TuitionCents:   app.TuitionCents,
		Priority:       string(app.Priority),

		Documents: docs,

		StageEnteredAt: app.StageEnteredAt,
		CreatedAt:      app.CreatedAt,
		UpdatedAt:      app.UpdatedAt,
	}
}

// ToApplicationList maps a slice of applications to their HTTP view.
func ToApplicationList(apps []*domain.Application) []*ApplicationResponse {
	out := make([]*ApplicationResponse, len(apps))
	for i, app := range apps {
		out[i] = ToApplicationResponse(app)
	}
	return out
}

// ToHistoryResponse maps the stage history to its HTTP view.
func ToHistoryResponse(entries []domain.HistoryEntry) []HistoryEntryResponse {
	out := make([]HistoryEntryResponse, len(entries))
	for i, e := range entries {
		out[i] = HistoryEntryResponse{
			Stage:     int(e.Stage),
			Status:    e.Status,
			Actor:     string(e.Actor),
			Reason:    e.Reason,
			Notes:     e.Notes,
			Documents: e.Documents,
			Timestamp: e.Timestamp,
		}
	}
	return out
}

// ToTargetOptions maps the service's available transitions to the HTTP view.
func ToTargetOptions(options []service.TargetOption) []TargetOptionResponse {
	out := make([]TargetOptionResponse, len(options))
	for i, o := range options {
		docs := make([]string, len(o.RequiredDocuments))
		for j, d := range o.RequiredDocuments {
			docs[j] = string(d)
		}
		out[i] = TargetOptionResponse{
			Target:               o.Target,
			RequiresReason:       o.RequiresReason,
			RequiresConfirmation: o.RequiresConfirmation,
			RequiresDate:         o.RequiresDate,
			RequiresTracking:     o.RequiresTracking,
			RequiredDocuments:    docs,
		}
	}
	return out
}

// ToTransitionResult maps a service transition result to the HTTP view.
func ToTransitionResult(result *service.TransitionResult) *TransitionResultResponse {
	resp := &TransitionResultResponse{
		Applied:  result.Applied,
		Errors:   result.Outcome.Errors,
		Warnings: result.Outcome.Warnings,
	}
	if result.Denial.Code != domain.DenialNone {
		resp.Denial = &DenialResponse{
			Code:   string(result.Denial.Code),
			Reason: result.Denial.Reason,
		}
	}
	if result.Application != nil {
		resp.Application = ToApplicationResponse(result.Application)
	}
	return resp
}
