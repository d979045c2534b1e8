// Package render produces the HTML pages served by every strategy.
// Templates are embedded so the binary carries its own assets.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/renderlab/renderlab/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page template names. Each pairs with templates/<name>.html.
const (
	tplHome       = "home"
	tplPostList   = "posts"
	tplPostDetail = "post"
	tplComparison = "comparison"
	tplNotFound   = "notfound"
	tplError      = "error"
)

var templateFuncs = template.FuncMap{
	"datetime": func(t time.Time) string {
		return t.UTC().Format("2006-01-02 15:04 MST")
	},
}

// Renderer renders pages from the embedded template set.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses the embedded templates and returns a Renderer.
func New() (*Renderer, error) {
	names := []string{tplHome, tplPostList, tplPostDetail, tplComparison, tplNotFound, tplError}

	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		tpl, err := template.New("layout.html").
			Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}
		pages[name] = tpl
	}

	return &Renderer{pages: pages}, nil
}

// Meta carries fields shared by every page.
type Meta struct {
	Title       string
	Strategy    model.Strategy
	GeneratedAt time.Time
}

// HomeData feeds the landing page.
type HomeData struct {
	Meta
	BuildID string
}

// ListData feeds the post listing pages.
type ListData struct {
	Meta
	Posts []*model.Post
}

// DetailData feeds the post detail pages.
type DetailData struct {
	Meta
	Post *model.Post
}

// ComparisonData feeds the strategy comparison page.
type ComparisonData struct {
	Meta
	BuildID            string
	RevalidateInterval time.Duration
}

// Home renders the landing page.
func (r *Renderer) Home(data HomeData) (string, error) {
	return r.render(tplHome, data)
}

// PostList renders a published-posts listing page for the given strategy.
func (r *Renderer) PostList(data ListData) (string, error) {
	return r.render(tplPostList, data)
}

// PostDetail renders a single post page for the given strategy.
func (r *Renderer) PostDetail(data DetailData) (string, error) {
	return r.render(tplPostDetail, data)
}

// Comparison renders the strategy comparison page.
func (r *Renderer) Comparison(data ComparisonData) (string, error) {
	return r.render(tplComparison, data)
}

// NotFound renders the shared 404 page.
func (r *Renderer) NotFound() (string, error) {
	return r.render(tplNotFound, Meta{Title: "Not Found", GeneratedAt: time.Now().UTC()})
}

// ServerError renders the shared 500 page.
func (r *Renderer) ServerError() (string, error) {
	return r.render(tplError, Meta{Title: "Something went wrong", GeneratedAt: time.Now().UTC()})
}

func (r *Renderer) render(name string, data any) (string, error) {
	tpl, ok := r.pages[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}

	return buf.String(), nil
}
