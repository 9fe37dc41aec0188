package email

import (
	"bytes"
	"embed"
	"fmt"
	htmltemplate "html/template"
	texttemplate "text/template"

	"github.com/seldo/newww/internal/core/domain/notification"
)

//go:embed templates/*
var templateFS embed.FS

// Config holds settings shared by every gateway
type Config struct {
	FromEmail   string
	FromName    string
	CompanyName string
}

// templateData is what the message templates render
type templateData struct {
	CompanyName   string
	RecipientName string
	Subject       string
	Link          string
}

// renderer renders the html and plain-text bodies of each message kind
type renderer struct {
	html map[notification.Kind]*htmltemplate.Template
	text map[notification.Kind]*texttemplate.Template
}

var templateFiles = map[notification.Kind]string{
	notification.KindConfirmEmail: "confirm_email",
}

func loadTemplates() (*renderer, error) {
	r := &renderer{
		html: make(map[notification.Kind]*htmltemplate.Template),
		text: make(map[notification.Kind]*texttemplate.Template),
	}
	for kind, name := range templateFiles {
		h, err := htmltemplate.ParseFS(templateFS, "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s.html: %w", name, err)
		}
		t, err := texttemplate.ParseFS(templateFS, "templates/"+name+".txt")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s.txt: %w", name, err)
		}
		r.html[kind] = h
		r.text[kind] = t
	}
	return r, nil
}

// render returns the html and text bodies for msg
func (r *renderer) render(cfg *Config, msg *notification.Message) (string, string, error) {
	h, ok := r.html[msg.Kind]
	if !ok {
		return "", "", fmt.Errorf("template for %q not found", msg.Kind)
	}
	data := templateData{
		CompanyName:   cfg.CompanyName,
		RecipientName: msg.RecipientName,
		Subject:       msg.Subject,
		Link:          msg.Link,
	}

	var hb bytes.Buffer
	if err := h.Execute(&hb, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s: %w", msg.Kind, err)
	}
	var tb bytes.Buffer
	if err := r.text[msg.Kind].Execute(&tb, data); err != nil {
		return "", "", fmt.Errorf("failed to execute template %s: %w", msg.Kind, err)
	}
	return hb.String(), tb.String(), nil
}
