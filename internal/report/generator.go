// Package report renders import summaries, match results and review lists
// for the command line.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"fjacquet/payrecon/internal/logging"

	"gopkg.in/yaml.v3"
)

// Supported output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Generator marshals results in the requested format.
type Generator struct {
	logger logging.Logger
}

// NewGenerator returns a Generator.
func NewGenerator(logger logging.Logger) *Generator {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Generator{logger: logger.WithField("component", "ReportGenerator")}
}

// Generate marshals v as indented JSON or as YAML.
func (g *Generator) Generate(v interface{}, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case FormatJSON, "":
		out, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			g.logger.WithError(err).Error("Failed to marshal JSON report")
			return nil, fmt.Errorf("failed to marshal JSON report: %w", err)
		}
		return append(out, '\n'), nil
	case FormatYAML, "yml":
		out, err := yaml.Marshal(v)
		if err != nil {
			g.logger.WithError(err).Error("Failed to marshal YAML report")
			return nil, fmt.Errorf("failed to marshal YAML report: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// Render writes v to w in format.
func (g *Generator) Render(w io.Writer, v interface{}, format string) error {
	out, err := g.Generate(v, format)
	if err != nil {
		return err
	}
	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// Render writes v to w with a default generator.
func Render(w io.Writer, v interface{}, format string) error {
	return NewGenerator(logging.NewDiscardLogger()).Render(w, v, format)
}
