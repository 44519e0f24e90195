package render

import (
	"embed"
	"fmt"
	"html"
	"html/template"
	"io"
	"net/url"
	"strings"

	"github.com/kalambet/jobassist/internal/contract"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(
	template.New("").Funcs(template.FuncMap{"stepAt": stepAt, "href": href}).ParseFS(templateFS, "templates/*.tmpl"),
)

// stepData is what the "step" template renders.
type stepData struct {
	Step     contract.RoadmapStep
	Position int
}

// stepAt pairs a step with its 1-based position from a 0-based range index.
func stepAt(index int, s contract.RoadmapStep) stepData {
	return stepData{Step: s, Position: index + 1}
}

// href emits an href attribute whose value is u byte for byte once entities
// are decoded. html/template would percent-encode non-ASCII and reserved
// characters, so the attribute is built here. Anything but an absolute
// http(s) URL links nowhere.
func href(u string) template.HTMLAttr {
	p, err := url.Parse(u)
	if err != nil || (p.Scheme != "http" && p.Scheme != "https") || p.Host == "" {
		return `href="#"`
	}
	return template.HTMLAttr(`href="` + html.EscapeString(u) + `"`)
}

// Listing renders one job card. The apply link opens the listing URL in a new
// browsing context.
func Listing(job contract.JobListing) (template.HTML, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, "listing", job); err != nil {
		return "", fmt.Errorf("rendering listing: %w", err)
	}
	return template.HTML(b.String()), nil
}

// Step renders a roadmap step labelled with its 1-based position. Videos are
// listed in the order given.
func Step(step contract.RoadmapStep, position int) (template.HTML, error) {
	var b strings.Builder
	if err := templates.ExecuteTemplate(&b, "step", stepData{Step: step, Position: position}); err != nil {
		return "", fmt.Errorf("rendering step: %w", err)
	}
	return template.HTML(b.String()), nil
}

// Page renders the whole document for v.
func Page(w io.Writer, v View) error {
	if err := templates.ExecuteTemplate(w, "page", v); err != nil {
		return fmt.Errorf("rendering page: %w", err)
	}
	return nil
}
