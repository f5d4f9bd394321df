package httpapi

import (
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"

	"github.com/trailpine/campground/internal/middleware"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var pages = map[string]*template.Template{}

func init() {
	for _, name := range []string{
		"home.tmpl",
		"campgrounds_index.tmpl",
		"campgrounds_new.tmpl",
		"campgrounds_show.tmpl",
		"campgrounds_edit.tmpl",
		"users_register.tmpl",
		"users_login.tmpl",
		"error.tmpl",
	} {
		pages[name] = template.Must(template.New("layout.tmpl").Funcs(template.FuncMap{
			"money": func(v float64) string { return fmt.Sprintf("$%.2f", v) },
		}).ParseFS(templateFS, "templates/layout.tmpl", "templates/"+name))
	}
}

// viewData is the envelope every page template receives.
type viewData struct {
	Title         string
	CurrentUserID string
	FlashSuccess  []string
	FlashError    []string
	Data          interface{}
}

// renderPage executes the named page inside the layout. Pending flash
// messages are consumed: shown once, then cleared from the session.
func (h *handler) renderPage(w http.ResponseWriter, r *http.Request, name, title string, data interface{}) error {
	vd := viewData{
		Title:         title,
		CurrentUserID: middleware.CurrentUserID(r.Context()),
		Data:          data,
	}
	vd.FlashSuccess, vd.FlashError = h.popFlashes(r)

	tmpl, ok := pages[name]
	if !ok {
		return fmt.Errorf("unknown template %q", name)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, "layout.tmpl", vd)
}

// popFlashes drains pending flash messages from the session.
func (h *handler) popFlashes(r *http.Request) (success, failure []string) {
	ctx := r.Context()
	sess, ok := middleware.SessionFrom(ctx)
	if !ok || sess.Token == "" {
		return nil, nil
	}
	if len(sess.FlashSuccess) == 0 && len(sess.FlashError) == 0 {
		return nil, nil
	}

	success, failure = sess.FlashSuccess, sess.FlashError
	sess.FlashSuccess, sess.FlashError = nil, nil
	if err := h.app.Sessions.Save(ctx, sess); err != nil {
		h.log.WithContext(ctx).WithError(err).Warn("failed to clear flashes")
	}
	return success, failure
}

// flash queues one-shot messages for the next rendered page, creating an
// anonymous session when the request has none.
func (h *handler) flash(w http.ResponseWriter, r *http.Request, success, failure string) {
	ctx := r.Context()
	sess, ok := middleware.SessionFrom(ctx)
	if !ok || sess.Token == "" {
		created, err := h.app.Sessions.Begin(ctx)
		if err != nil {
			h.log.WithContext(ctx).WithError(err).Warn("failed to begin session for flash")
			return
		}
		sess = created
		h.auth.SetCookie(w, sess)
	}
	if success != "" {
		sess.FlashSuccess = append(sess.FlashSuccess, success)
	}
	if failure != "" {
		sess.FlashError = append(sess.FlashError, failure)
	}
	if err := h.app.Sessions.Save(ctx, sess); err != nil {
		h.log.WithContext(ctx).WithError(err).Warn("failed to save flash")
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
