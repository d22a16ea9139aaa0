package handlers

import (
	"bytes"
	"context"
	"embed"
	"encoding/gob"
	"fmt"
	"html/template"
	"net/http"

	"liist/models"

	"github.com/gorilla/sessions"
	"github.com/umakantv/go-utils/errs"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

const flashSessionName = "liist_flash"

var pageNames = []string{"index", "update", "auth", "error"}

// Flash is a one-shot message shown on the next rendered page.
type Flash struct {
	Category string
	Message  string
}

func init() {
	gob.Register(Flash{})
}

// PageData is the view model shared by every template.
type PageData struct {
	Title   string
	User    *models.User
	Flashes []Flash

	Items []models.ListItem
	Item  *models.ListItem

	Form  AuthForm
	Error *errs.AppError
}

// AuthForm describes the login and registration forms, which share a template.
type AuthForm struct {
	Action   string
	Button   string
	Register bool
	Email    string
	Username string
}

// Pages renders HTML views and carries flash messages across redirects in
// a signed cookie.
type Pages struct {
	views map[string]*template.Template
	store *sessions.CookieStore
}

func NewPages(secretKey []byte, secureCookies bool) (*Pages, error) {
	views := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		views[name] = tmpl
	}

	store := sessions.NewCookieStore(secretKey)
	store.Options = &sessions.Options{
		Path:     "/",
		HttpOnly: true,
		Secure:   secureCookies,
		SameSite: http.SameSiteStrictMode,
	}

	return &Pages{views: views, store: store}, nil
}

// Render writes the named view with status. Pending flashes are consumed
// and shown ahead of any flashes already in data.
func (p *Pages) Render(ctx context.Context, w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := p.views[name]
	if !ok {
		logRequest(ctx, "error", "Unknown view", zap.String("view", name))
		http.Error(w, msgGeneric, http.StatusInternalServerError)
		return
	}

	data.Flashes = append(p.popFlashes(ctx, w, r), data.Flashes...)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		logRequest(ctx, "error", "Failed to render view", zap.String("view", name), zap.Error(err))
		http.Error(w, msgGeneric, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// RenderError renders the error page for err with its mapped status code.
func (p *Pages) RenderError(ctx context.Context, w http.ResponseWriter, r *http.Request, err error) {
	appErr := toAppError(err)
	if appErr.Code >= http.StatusInternalServerError {
		logRequest(ctx, "error", "Request failed", zap.Error(err))
	} else {
		logRequest(ctx, "info", "Request rejected", zap.Int("status", appErr.Code), zap.String("reason", err.Error()))
	}

	p.Render(ctx, w, r, appErr.Code, "error", &PageData{
		Title: http.StatusText(appErr.Code),
		User:  currentUser(ctx),
		Error: appErr,
	})
}

// Flash queues a message for the next page the client renders.
func (p *Pages) Flash(ctx context.Context, w http.ResponseWriter, r *http.Request, category, message string) {
	sess, err := p.store.Get(r, flashSessionName)
	if err != nil {
		logRequest(ctx, "debug", "Discarding unreadable flash cookie", zap.Error(err))
	}
	sess.AddFlash(Flash{Category: category, Message: message})
	if err := sess.Save(r, w); err != nil {
		logRequest(ctx, "error", "Failed to save flash", zap.Error(err))
	}
}

func (p *Pages) popFlashes(ctx context.Context, w http.ResponseWriter, r *http.Request) []Flash {
	sess, err := p.store.Get(r, flashSessionName)
	if err != nil {
		logRequest(ctx, "debug", "Discarding unreadable flash cookie", zap.Error(err))
	}
	raw := sess.Flashes()
	if len(raw) == 0 {
		return nil
	}
	if err := sess.Save(r, w); err != nil {
		logRequest(ctx, "error", "Failed to clear flashes", zap.Error(err))
	}

	flashes := make([]Flash, 0, len(raw))
	for _, v := range raw {
		if f, ok := v.(Flash); ok {
			flashes = append(flashes, f)
		}
	}
	return flashes
}

// redirect answers with a 302, matching what browsers expect after a form post.
func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusFound)
}
