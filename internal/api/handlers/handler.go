// Package handlers implements the HTML pages and the JSON API.
package handlers

import (
	"bytes"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"github.com/yuin/goldmark"
	"go.uber.org/zap"

	"github.com/rohits-web03/notevault/internal/api/flash"
	"github.com/rohits-web03/notevault/internal/api/middleware"
	"github.com/rohits-web03/notevault/internal/config"
	domainerrors "github.com/rohits-web03/notevault/internal/errors"
	"github.com/rohits-web03/notevault/internal/models"
	"github.com/rohits-web03/notevault/internal/services"
	"github.com/rohits-web03/notevault/internal/views"
)

var mdRenderer = goldmark.New()

// Deps are the collaborators of a Handler. Google is nil when Google
// sign-in is not configured.
type Deps struct {
	Auth   *services.AuthService
	Notes  *services.NoteService
	Google *services.GoogleAuth
	Views  *views.Templates
	Config config.Config
	Log    *zap.Logger
}

type Handler struct {
	auth   *services.AuthService
	notes  *services.NoteService
	google *services.GoogleAuth
	views  *views.Templates
	cfg    config.Config
	log    *zap.Logger
}

func New(d Deps) *Handler {
	return &Handler{
		auth:   d.Auth,
		notes:  d.Notes,
		google: d.Google,
		views:  d.Views,
		cfg:    d.Config,
		log:    d.Log,
	}
}

// GoogleEnabled reports whether the Google sign-in routes are served.
func (h *Handler) GoogleEnabled() bool {
	return h.google != nil
}

func principal(r *http.Request) *services.Principal {
	p, _ := middleware.PrincipalFrom(r.Context())
	return p
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, data views.ViewData) {
	if p, ok := middleware.PrincipalFrom(r.Context()); ok {
		data.User = &views.CurrentUser{Username: p.Username, Email: p.Email}
	}
	data.Flashes = append(flash.Pop(w, r), data.Flashes...)
	data.GoogleEnabled = h.GoogleEnabled()
	h.views.RenderPage(w, status, data)
}

func (h *Handler) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	h.render(w, r, status, views.ViewData{
		Title:           http.StatusText(status),
		ContentTemplate: "error",
		Status:          status,
		Message:         message,
	})
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.log.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	h.renderError(w, r, http.StatusInternalServerError, "Something went wrong. Please try again.")
}

// NotFound renders the 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.renderError(w, r, http.StatusNotFound, "Page not found.")
}

// failPage answers a page request whose service call failed. Another
// user's note is not acknowledged; the caller lands back on their list.
func (h *Handler) failPage(w http.ResponseWriter, r *http.Request, err error) {
	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) {
		h.serverError(w, r, err)
		return
	}
	switch domainErr.Code {
	case domainerrors.CodeNotFound:
		h.renderError(w, r, http.StatusNotFound, domainErr.Message)
	case domainerrors.CodeForbidden:
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
	case domainerrors.CodeInternal:
		h.serverError(w, r, err)
	default:
		h.renderError(w, r, domainErr.HTTPStatus(), domainErr.Message)
	}
}

// failForm re-renders a form after a rejected submit. Nothing was changed.
func (h *Handler) failForm(w http.ResponseWriter, r *http.Request, err error, data views.ViewData) {
	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) {
		h.serverError(w, r, err)
		return
	}
	switch domainErr.Code {
	case domainerrors.CodeValidation:
		data.Errors = domainErr.FieldErrors()
		if len(data.Errors) == 0 {
			data.Flashes = append(data.Flashes, flash.Message{Category: flash.Danger, Text: domainErr.Message})
		}
		h.render(w, r, http.StatusBadRequest, data)
	case domainerrors.CodeConflict, domainerrors.CodeInvalidCredentials, domainerrors.CodeUnavailable:
		data.Flashes = append(data.Flashes, flash.Message{Category: flash.Danger, Text: domainErr.Message})
		h.render(w, r, domainErr.HTTPStatus(), data)
	default:
		h.failPage(w, r, err)
	}
}

func pathID(r *http.Request) (uint, bool) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// safeNext keeps only same-site absolute paths as post-login targets.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	return next
}

func renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

func noteCard(n models.Note) views.NoteCard {
	return views.NoteCard{
		ID:           n.ID,
		Title:        n.Title,
		Subject:      n.Subject,
		Tags:         n.TagNames(),
		ResourceLink: n.ResourceLink,
		RenderedHTML: renderMarkdown(n.Content),
	}
}
