package core

import (
	"bytes"
	"embed"
	"fmt"
	htmltmpl "html/template"
	"io/fs"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"
)

//go:embed templates/email/*
var emailTemplatesFS embed.FS

const emailTemplatesDir = "templates/email"

var (
	templates       map[string]*emailTemplate // {name: templates}
	tmplInit        sync.Once
	tmplErr         error
	frontendBaseURL string
	strictTemplates bool
)

type (
	// emailTemplate holds both renditions of a template; either may be missing.
	emailTemplate struct {
		text *texttmpl.Template
		html *htmltmpl.Template
	}

	EmailMessage struct {
		To      []mail.Address
		ReplyTo *mail.Address
		Subject string
		BodyStr string // simple text/plain, non-templated content

		// templated contents
		TemplateName string // without ext
		TemplateData interface{}
		TextContent  string
		HTMLContent  string
	}

	ContextData struct {
		FrontendBaseURL string
		Data            interface{}
	}

	// EmailService is any service that can send emails
	EmailService interface {
		// SendMessages sends messages concurrently
		SendMessages(messages ...*EmailMessage)
	}
)

// ParseEmailTemplates parses the embedded email templates once.
// Missing template keys fail rendering in debug and test modes.
func ParseEmailTemplates(conf *Config, logger Logger) {
	frontendBaseURL = conf.FrontendBaseURL
	strictTemplates = conf.Debug || conf.TestMode
	if err := loadTemplates(); err != nil {
		logger.Error(fmt.Sprintf("parsing email templates: %v", err), err)
	}
}

func loadTemplates() error {
	tmplInit.Do(func() { templates, tmplErr = parseTemplates() })
	return tmplErr
}

// Render fills TextContent and HTMLContent from BodyStr or the named template.
func (m *EmailMessage) Render() error {
	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
		return nil
	}
	if m.TemplateName == "" {
		return nil
	}
	if err := loadTemplates(); err != nil {
		return err
	}
	tmpl, ok := templates[m.TemplateName]
	if !ok {
		return fmt.Errorf("unknown email template %q", m.TemplateName)
	}

	data := ContextData{FrontendBaseURL: frontendBaseURL, Data: m.TemplateData}
	var buff bytes.Buffer
	if tmpl.text != nil {
		if err := tmpl.text.Execute(&buff, data); err != nil {
			return err
		}
		m.TextContent = buff.String()
		buff.Reset()
	}
	if tmpl.html != nil {
		if err := tmpl.html.Execute(&buff, data); err != nil {
			return err
		}
		m.HTMLContent = buff.String()
	}
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }

// parseTemplates pairs every "<name>.txt" / "<name>.gohtml" with its "_base" layout.
func parseTemplates() (map[string]*emailTemplate, error) {
	fps, err := fs.Glob(emailTemplatesFS, path.Join(emailTemplatesDir, "*"))
	if err != nil {
		return nil, err
	}

	parsed := make(map[string]*emailTemplate)
	for _, fp := range fps {
		fname := path.Base(fp)
		ext := path.Ext(fname)
		if strings.HasPrefix(fname, "_") || !(ext == ".txt" || ext == ".gohtml") {
			continue
		}
		name := strings.TrimSuffix(fname, ext)
		entry, ok := parsed[name]
		if !ok {
			entry = new(emailTemplate)
			parsed[name] = entry
		}

		base := path.Join(emailTemplatesDir, "_base"+ext)
		if ext == ".txt" {
			if entry.text, err = texttmpl.ParseFS(emailTemplatesFS, base, fp); err != nil {
				return nil, err
			}
			if strictTemplates {
				entry.text = entry.text.Option("missingkey=error")
			}
		} else {
			if entry.html, err = htmltmpl.ParseFS(emailTemplatesFS, base, fp); err != nil {
				return nil, err
			}
			if strictTemplates {
				entry.html = entry.html.Option("missingkey=error")
			}
		}
	}
	return parsed, nil
}
