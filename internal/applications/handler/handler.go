// Package handler exposes the applications module over HTTP.
package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"admissions_portal_backend/internal/applications/domain"
	"admissions_portal_backend/internal/applications/service"
	"admissions_portal_backend/internal/applications/transport"
	"admissions_portal_backend/platform/httpkit"
	"admissions_portal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
	msgUnknownRole      = "caller role has no workflow actor"
)

// UploadPresigner issues presigned PUT URLs for document uploads.
// Implemented by the MinIO storage adapter.
type UploadPresigner interface {
	PresignUpload(ctx context.Context, fileKey string, expiry time.Duration) (string, error)
}

const presignExpiry = 15 * time.Minute

// Handler handles HTTP requests for applications.
type Handler struct {
	svc     *service.Service
	val     *validator.Validator
	presign UploadPresigner
}

// New creates a new applications handler. presign may be nil when object
// storage is disabled; the presign endpoint then returns 503.
func New(svc *service.Service, val *validator.Validator, presign UploadPresigner) *Handler {
	return &Handler{svc: svc, val: val, presign: presign}
}

// RegisterRoutes registers the application routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("", h.List)
	rg.GET("/:id", h.GetByID)
	rg.GET("/:id/history", h.GetHistory)
	rg.GET("/:id/transitions", h.ListTransitions)
	rg.POST("/:id/transitions", h.AttemptTransition)
	rg.POST("/:id/documents/presign", h.PresignDocument)
	rg.POST("/:id/documents", h.ConfirmDocument)
}

// callerActor resolves the identity's role to a workflow actor, writing a
// 403 when the role is not part of the workflow.
func callerActor(c *gin.Context) (domain.Actor, bool) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return "", false
	}

	actor, ok := domain.ParseActor(identity.Role())
	if !ok {
		httpkit.Error(c, http.StatusForbidden, msgUnknownRole, identity.Role())
		return "", false
	}
	return actor, true
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid application id", nil)
		return uuid.UUID{}, false
	}
	return id, true
}

// Create handles POST /api/applications
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}
	actor, ok := domain.ParseActor(identity.Role())
	if !ok {
		httpkit.Error(c, http.StatusForbidden, msgUnknownRole, identity.Role())
		return
	}

	// Partners always file under themselves. Admins may file on a partner's
	// behalf.
	partnerID := identity.UserID()
	if actor == domain.ActorAdmin && req.PartnerID != nil {
		partnerID = *req.PartnerID
	}

	app, err := h.svc.CreateApplication(c.Request.Context(), service.CreateInput{
		StudentName:  req.StudentName,
		Program:      req.Program,
		University:   req.University,
		PartnerID:    partnerID,
		TuitionCents: req.TuitionCents,
		Priority:     domain.Priority(req.Priority),
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToApplicationResponse(app))
}

// List handles GET /api/applications. Partners see their own applications;
// admins pick a partner with the partner_id query parameter.
func (h *Handler) List(c *gin.Context) {
	actor, ok := callerActor(c)
	if !ok {
		return
	}
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var partnerID uuid.UUID
	switch actor {
	case domain.ActorPartner:
		partnerID = identity.UserID()
	case domain.ActorAdmin:
		id, err := uuid.Parse(c.Query("partner_id"))
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "partner_id query parameter is required", nil)
			return
		}
		partnerID = id
	default:
		httpkit.Error(c, http.StatusForbidden, "listing is limited to partners and admins", nil)
		return
	}

	apps, err := h.svc.ListApplications(c.Request.Context(), partnerID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToApplicationList(apps))
}

// GetByID handles GET /api/applications/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, ok := callerActor(c); !ok {
		return
	}

	app, err := h.svc.GetApplication(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToApplicationResponse(app))
}

// GetHistory handles GET /api/applications/:id/history
func (h *Handler) GetHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, ok := callerActor(c); !ok {
		return
	}

	app, err := h.svc.GetApplication(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToHistoryResponse(app.StageHistory))
}

// ListTransitions handles GET /api/applications/:id/transitions
func (h *Handler) ListTransitions(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor, ok := callerActor(c)
	if !ok {
		return
	}

	options, err := h.svc.AvailableTransitions(c.Request.Context(), id, actor)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ToTargetOptions(options))
}

// AttemptTransition handles POST /api/applications/:id/transitions
func (h *Handler) AttemptTransition(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor, ok := callerActor(c)
	if !ok {
		return
	}

	var req transport.AttemptTransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.svc.AttemptTransition(c.Request.Context(), id, actor, req.Target, req.AuxData())
	if httpkit.HandleError(c, err) {
		return
	}

	resp := transport.ToTransitionResult(result)
	switch {
	case result.Applied:
		httpkit.OK(c, resp)
	case resp.Denial != nil:
		httpkit.JSON(c, http.StatusForbidden, resp)
	default:
		httpkit.JSON(c, http.StatusUnprocessableEntity, resp)
	}
}

// PresignDocument handles POST /api/applications/:id/documents/presign
func (h *Handler) PresignDocument(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, ok := callerActor(c); !ok {
		return
	}

	if h.presign == nil {
		httpkit.Error(c, http.StatusServiceUnavailable, "document storage is not configured", nil)
		return
	}

	var req transport.PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	// Ensure the application exists before handing out a URL.
	if _, err := h.svc.GetApplication(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}

	fileKey := fmt.Sprintf("applications/%s/%s/%s_%s", id, req.DocumentType, uuid.NewString(), req.FileName)
	url, err := h.presign.PresignUpload(c.Request.Context(), fileKey, presignExpiry)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.PresignUploadResponse{
		UploadURL: url,
		FileKey:   fileKey,
		ExpiresAt: time.Now().Add(presignExpiry),
	})
}

// ConfirmDocument handles POST /api/applications/:id/documents
func (h *Handler) ConfirmDocument(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	actor, ok := callerActor(c)
	if !ok {
		return
	}

	var req transport.ConfirmDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	app, err := h.svc.ConfirmDocumentUpload(c.Request.Context(), id, actor, &domain.Document{
		Type:     domain.DocumentType(req.DocumentType),
		FileName: req.FileName,
		FileKey:  req.FileKey,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.JSON(c, http.StatusCreated, transport.ToApplicationResponse(app))
}
