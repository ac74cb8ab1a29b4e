package core

import (
	htmltmpl "html/template"
	"net/mail"
	"path"
	"strings"
	"sync"
	texttmpl "text/template"

	"bytes"

	"github.com/pkg/errors"

	appfs "github.com/shulehub/backend/fs"
)

const tmplRoot = "assets/templates/email"

var (
	textTemplates map[string]*texttmpl.Template
	htmlTemplates map[string]*htmltmpl.Template
	tmplInit      sync.Once
	tmplInitErr   error
)

type (
	EmailMessage struct {
		To      []mail.Address
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

	// EmailService is any service that can send emails.
	EmailService interface {
		// SendMessage renders and sends a single message. A delivery
		// failure is returned to the caller; the caller decides whether
		// it is fatal.
		SendMessage(msg *EmailMessage) error
	}
)

// Render resolves TextContent and HTMLContent from either BodyStr or the
// embedded templates named TemplateName.
func (m *EmailMessage) Render(conf *Config) error {
	tmplInit.Do(parseTemplates)
	if tmplInitErr != nil {
		return tmplInitErr
	}

	data := ContextData{FrontendBaseURL: conf.FrontendBaseURL, Data: m.TemplateData}

	if m.BodyStr != "" {
		m.TextContent = m.BodyStr
	} else if tmpl, ok := textTemplates[m.TemplateName]; ok {
		var buff bytes.Buffer
		if err := tmpl.Execute(&buff, data); err != nil {
			return errors.Wrap(err, "rendering text template")
		}
		m.TextContent = buff.String()
	}

	if tmpl, ok := htmlTemplates[m.TemplateName]; ok {
		var buff bytes.Buffer
		if err := tmpl.Execute(&buff, data); err != nil {
			return errors.Wrap(err, "rendering html template")
		}
		m.HTMLContent = buff.String()
	}
	return nil
}

func (m *EmailMessage) HasRecipients() bool { return len(m.To) > 0 }
func (m *EmailMessage) HasContent() bool    { return (m.TextContent != "") || (m.HTMLContent != "") }

// ParseEmailTemplates eagerly parses the embedded email templates so a
// broken template fails at boot instead of on first send.
func ParseEmailTemplates(logger Logger) {
	tmplInit.Do(parseTemplates)
	if tmplInitErr != nil {
		logger.Fatal("parsing email templates", tmplInitErr)
	}
}

func parseTemplates() {
	textTemplates = make(map[string]*texttmpl.Template)
	htmlTemplates = make(map[string]*htmltmpl.Template)

	entries, err := appfs.FS.ReadDir(tmplRoot)
	if err != nil {
		tmplInitErr = errors.Wrap(err, "reading email template dir")
		return
	}

	for _, entry := range entries {
		fname := entry.Name()
		ext := path.Ext(fname)
		if strings.HasPrefix(fname, "_") || !(ext == ".txt" || ext == ".gohtml") {
			continue
		}
		name := strings.TrimSuffix(fname, ext)
		if ext == ".txt" {
			tmpl, err := texttmpl.ParseFS(appfs.FS, path.Join(tmplRoot, "_base.txt"), path.Join(tmplRoot, fname))
			if err != nil {
				tmplInitErr = errors.Wrapf(err, "parsing %s", fname)
				return
			}
			textTemplates[name] = tmpl.Option("missingkey=error")
		} else {
			tmpl, err := htmltmpl.ParseFS(appfs.FS, path.Join(tmplRoot, "_base.gohtml"), path.Join(tmplRoot, fname))
			if err != nil {
				tmplInitErr = errors.Wrapf(err, "parsing %s", fname)
				return
			}
			htmlTemplates[name] = tmpl.Option("missingkey=error")
		}
	}
}
