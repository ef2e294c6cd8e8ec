package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/danmuck/csmacd/internal/simulation"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

var ErrUnknownFormat = errors.New("report: unknown export format")

// Document is the exported view of one session.
type Document struct {
	Session simulation.Result `json:"session" yaml:"session"`
	Totals  simulation.Totals `json:"totals" yaml:"totals"`
}

func NewDocument(res simulation.Result) Document {
	return Document{Session: res, Totals: res.Totals()}
}

// FormatFromPath picks the export format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, filepath.Ext(path))
	}
}

func Export(w io.Writer, format Format, res simulation.Result) error {
	doc := NewDocument(res)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile exports res to path in the format its extension names.
func WriteFile(path string, res simulation.Result) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("report export failed (%s): %w", path, err)
	}
	if err := Export(f, format, res); err != nil {
		_ = f.Close()
		return fmt.Errorf("report export failed (%s): %w", path, err)
	}
	return f.Close()
}
