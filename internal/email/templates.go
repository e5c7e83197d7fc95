package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

type baseEmailData struct {
	Title   string
	Heading string
}

type studentEmailData struct {
	baseEmailData
	StudentName string
	Reason      string
	StageName   string
	Status      string
	University  string
	Amount      string
	PortalURL   string
}

type slaEmailData struct {
	baseEmailData
	ApplicationID string
	Status        string
	IdleFor       string
}

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

func renderEmailTemplate(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("failed to render email template %s: %w", name, err)
	}
	return buf.String(), nil
}
