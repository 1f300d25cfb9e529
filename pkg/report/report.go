// Package report renders the outcome of a scenario run for people and
// for machines.
//
// Text output goes through an embedded text/template whose helpers apply
// lipgloss styles; with color disabled the same template yields plain
// text. JSON output is a stable Document.
package report

import (
	"embed"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/arthur-debert/scaffoldcheck/pkg/errors"
	"github.com/arthur-debert/scaffoldcheck/pkg/logging"
	"github.com/arthur-debert/scaffoldcheck/pkg/scenarios"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// ScenarioResult is one scenario in a Document.
type ScenarioResult struct {
	Name       string                 `json:"name"`
	Passed     bool                   `json:"passed"`
	DurationMS int64                  `json:"duration_ms"`
	Error      string                 `json:"error,omitempty"`
	Code       errors.ErrorCode       `json:"code,omitempty"`
	Details    string                 `json:"-"`
	Fields     map[string]interface{} `json:"details,omitempty"`
}

// Document is the rendered form of a run.
type Document struct {
	Template   string           `json:"template"`
	Tag        string           `json:"tag"`
	OK         bool             `json:"ok"`
	Passed     int              `json:"passed"`
	Failed     int              `json:"failed"`
	DurationMS int64            `json:"duration_ms"`
	Scenarios  []ScenarioResult `json:"scenarios"`
}

// NewDocument converts a run report.
func NewDocument(templateRoot, tag string, rep scenarios.Report) Document {
	doc := Document{
		Template:   templateRoot,
		Tag:        tag,
		OK:         rep.OK(),
		Passed:     rep.Passed(),
		Failed:     rep.Failed(),
		DurationMS: rep.Duration.Milliseconds(),
		Scenarios:  make([]ScenarioResult, 0, len(rep.Results)),
	}
	for _, res := range rep.Results {
		sr := ScenarioResult{
			Name:       res.Name,
			Passed:     res.Passed(),
			DurationMS: res.Duration.Milliseconds(),
		}
		if res.Err != nil {
			sr.Error = res.Err.Error()
			sr.Code = errors.GetErrorCode(res.Err)
			if fields := chainDetails(res.Err); len(fields) > 0 {
				sr.Fields = fields
				sr.Details = (&errors.ScaffoldError{Details: fields}).DetailString()
			}
		}
		doc.Scenarios = append(doc.Scenarios, sr)
	}
	return doc
}

// chainDetails merges the details of every ScaffoldError in err's chain.
// On a key collision the outermost error wins.
func chainDetails(err error) map[string]interface{} {
	var merged map[string]interface{}
	for e := err; e != nil; e = stderrors.Unwrap(e) {
		scErr, ok := e.(*errors.ScaffoldError)
		if !ok {
			continue
		}
		for k, v := range scErr.Details {
			if merged == nil {
				merged = make(map[string]interface{})
			}
			if _, seen := merged[k]; !seen {
				merged[k] = v
			}
		}
	}
	return merged
}

// Render writes doc to w in format. FormatAuto renders as plain text; the
// caller resolves it against a terminal first.
func Render(w io.Writer, format Format, doc Document) error {
	logger := logging.GetLogger("report")
	logger.Debug().Str("format", format.String()).Int("scenarios", len(doc.Scenarios)).Msg("Rendering report")

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return errors.Wrap(err, errors.ErrInternal, "failed to encode report")
		}
		return nil
	case FormatTerminal:
		return renderText(w, doc, NewStyles(w, true))
	default:
		return renderText(w, doc, NewStyles(w, false))
	}
}

func renderText(w io.Writer, doc Document, st Styles) error {
	funcs := template.FuncMap{
		"header": func(s string) string { return st.Header.Render(s) },
		"pass":   func(s string) string { return st.Pass.Render(s) },
		"fail":   func(s string) string { return st.Fail.Render(s) },
		"muted":  func(s string) string { return st.Muted.Render(s) },
		"seconds": func(ms int64) string {
			return fmt.Sprintf("%.1fs", time.Duration(ms*int64(time.Millisecond)).Seconds())
		},
		"summary": func(d Document) string {
			line := fmt.Sprintf("%d passed, %d failed", d.Passed, d.Failed)
			if d.OK {
				return st.Pass.Render(line)
			}
			return st.Fail.Render(line)
		},
	}

	tmpl, err := template.New("report.tmpl").Funcs(funcs).ParseFS(templatesFS, "templates/*.tmpl")
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to parse report templates")
	}
	if err := tmpl.ExecuteTemplate(w, "report", doc); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to render report")
	}
	return nil
}

// RenderError writes a failure that happened before any scenario ran.
func RenderError(w io.Writer, format Format, err error) error {
	if format == FormatJSON {
		body := map[string]interface{}{
			"ok":    false,
			"error": err.Error(),
			"code":  errors.GetErrorCode(err),
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(body)
	}
	st := NewStyles(w, format == FormatTerminal)
	_, werr := fmt.Fprintf(w, "%s %v\n", st.Fail.Render("error:"), err)
	return werr
}
