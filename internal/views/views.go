// Package views renders the HTML pages.
package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/rohits-web03/notevault/internal/api/flash"
)

//go:embed templates/*.html
var templateFS embed.FS

// CurrentUser is what the layout needs to know about the caller.
type CurrentUser struct {
	Username string
	Email    string
}

type NoteCard struct {
	ID           uint
	Title        string
	Subject      string
	Tags         []string
	ResourceLink string
	RenderedHTML template.HTML
}

type PageLinks struct {
	Page       int
	TotalPages int
	Total      int64
	PrevURL    string
	NextURL    string
}

type Filters struct {
	Query   string
	Subject string
	Tag     string
}

type ViewData struct {
	Title           string
	ContentTemplate string
	ContentHTML     template.HTML
	User            *CurrentUser
	Flashes         []flash.Message
	GoogleEnabled   bool

	// Form state for re-rendering after a failed submit.
	Form   map[string]string
	Errors map[string]string
	Next   string
	Action string

	Notes          []NoteCard
	Note           *NoteCard
	Filters        Filters
	Pages          PageLinks
	UploadsEnabled bool

	Status  int
	Message string
}

// Value returns the submitted form value for field.
func (d ViewData) Value(field string) string {
	return d.Form[field]
}

// Error returns the validation message for field.
func (d ViewData) Error(field string) string {
	return d.Errors[field]
}

type Templates struct {
	all *template.Template
}

func Parse() (*Templates, error) {
	t := template.New("").Funcs(template.FuncMap{
		"dict": func(values ...any) (map[string]any, error) {
			if len(values)%2 != 0 {
				return nil, fmt.Errorf("dict requires even number of arguments")
			}
			out := make(map[string]any, len(values)/2)
			for i := 0; i < len(values); i += 2 {
				key, ok := values[i].(string)
				if !ok {
					return nil, fmt.Errorf("dict keys must be strings")
				}
				out[key] = values[i+1]
			}
			return out, nil
		},
	})
	t, err := t.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &Templates{all: t}, nil
}

func MustParse() *Templates {
	t, err := Parse()
	if err != nil {
		panic(err)
	}
	return t
}

// RenderPage renders data.ContentTemplate inside the base layout.
func (t *Templates) RenderPage(w http.ResponseWriter, status int, data ViewData) {
	var content bytes.Buffer
	if err := t.all.ExecuteTemplate(&content, data.ContentTemplate, data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	pageData := data
	pageData.ContentHTML = template.HTML(content.String())

	var page bytes.Buffer
	if err := t.all.ExecuteTemplate(&page, "base", pageData); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = page.WriteTo(w)
}
