package adapters

import (
	"bytes"
	"context"
	"fmt"
	"text/template"
	"time"

	"admissions_portal_backend/internal/adapters/storage"
	"admissions_portal_backend/internal/applications/domain"

	"github.com/google/uuid"
)

// Workflow document templates, keyed by the effect's template key.
var documentTemplates = map[string]*template.Template{
	"offer_letter": template.Must(template.New("offer_letter").Parse(
		`OFFER LETTER

Date: {{.Date}}
Student: {{.StudentName}}
Program: {{.Program}}
University: {{.University}}

We are pleased to confirm that {{.StudentName}} has been offered a place in
{{.Program}} at {{.University}}. This letter accompanies the visa application
and must be presented on enrollment.

Reference: {{.ApplicationID}}
`)),
	"visa_payment_request": template.Must(template.New("visa_payment_request").Parse(
		`VISA PAYMENT REQUEST

Date: {{.Date}}
Student: {{.StudentName}}
Application: {{.ApplicationID}}

The visa processing stage has started. Please settle the visa processing fee
and upload the payment receipt to continue.
`)),
}

// DocumentGenerator renders workflow documents and stores them in the
// generated-documents bucket. Implements the applications service's
// DocumentGenerator.
type DocumentGenerator struct {
	store  *storage.Service
	bucket string
}

// NewDocumentGenerator creates a generator bound to the generated documents
// bucket.
func NewDocumentGenerator(store *storage.Service, bucket string) *DocumentGenerator {
	return &DocumentGenerator{store: store, bucket: bucket}
}

// Generate renders the named template for the application and uploads the
// result, returning the document record to persist.
func (g *DocumentGenerator) Generate(ctx context.Context, app *domain.Application, templateKey string, docType domain.DocumentType) (*domain.Document, error) {
	tmpl, ok := documentTemplates[templateKey]
	if !ok {
		return nil, fmt.Errorf("unknown document template %q", templateKey)
	}

	now := time.Now()
	var buf bytes.Buffer
	err := tmpl.Execute(&buf, map[string]string{
		"Date":          now.Format("2006-01-02"),
		"StudentName":   app.StudentName,
		"Program":       app.Program,
		"University":    app.University,
		"ApplicationID": app.ID.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render template %q: %w", templateKey, err)
	}

	docID := uuid.New()
	fileName := fmt.Sprintf("%s_%s.txt", templateKey, now.Format("20060102"))
	fileKey := fmt.Sprintf("applications/%s/%s/%s", app.ID, templateKey, fileName)

	if err := g.store.Upload(ctx, g.bucket, fileKey, "text/plain", &buf, int64(buf.Len())); err != nil {
		return nil, err
	}

	return &domain.Document{
		ID:          docID,
		Type:        docType,
		FileName:    fileName,
		FileKey:     fileKey,
		UploadedBy:  domain.ActorSystem,
		GeneratedBy: templateKey,
		UploadedAt:  now,
	}, nil
}
