// Package views holds the rendering surfaces the presentation fan-out writes
// into: an HTML page for the dashboard and a plain-text report for terminals.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"

	"diskpanel/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Templates parses the embedded page templates
func Templates() (*template.Template, error) {
	return template.New("").ParseFS(templateFS, "templates/*.html")
}

// Static returns the embedded static assets rooted at static/
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// UnsupportedPointError is returned when a widget is written to a slot that
// cannot hold it
type UnsupportedPointError struct {
	Point models.InsertionPoint
	Kind  string
}

func (e UnsupportedPointError) Error() string {
	return fmt.Sprintf("insertion point %q cannot hold %s", e.Point, e.Kind)
}

func checkPoint(point models.InsertionPoint, kind string, allowed ...models.InsertionPoint) error {
	for _, p := range allowed {
		if p == point {
			return nil
		}
	}
	return UnsupportedPointError{Point: point, Kind: kind}
}
