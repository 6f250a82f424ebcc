// Package ingest reads pattern observations from JSONL, JSON and YAML files
// and replays them into a PatternLog.
package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/valter-silva-au/pattern-metrics/internal/observability"
	"github.com/valter-silva-au/pattern-metrics/pkg/models"
	"gopkg.in/yaml.v3"
)

// Format identifies an observation file encoding.
type Format string

const (
	FormatJSONL Format = "jsonl"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 1 << 20

// FormatForPath picks a Format from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unsupported observation file extension %q (use .jsonl, .ndjson, .json, .yaml or .yml)", filepath.Ext(path))
	}
}

// ReadFile decodes every observation in the file at path.
func ReadFile(path string) ([]models.Observation, error) {
	format, err := FormatForPath(path)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening observation file: %w", err)
	}
	defer func() { _ = f.Close() }()

	observations, err := Decode(f, format)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return observations, nil
}

// Decode reads observations from r in the given format.
func Decode(r io.Reader, format Format) ([]models.Observation, error) {
	switch format {
	case FormatJSONL:
		return decodeJSONL(r)
	case FormatJSON:
		var observations []models.Observation
		if err := json.NewDecoder(r).Decode(&observations); err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("decoding JSON observations: %w", err)
		}
		return observations, nil
	case FormatYAML:
		return decodeYAML(r)
	default:
		return nil, fmt.Errorf("unsupported format %q", format)
	}
}

// decodeJSONL rejects the whole input on the first malformed line so a
// truncated export is never half-loaded.
func decodeJSONL(r io.Reader) ([]models.Observation, error) {
	var observations []models.Observation

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var o models.Observation
		if err := json.Unmarshal(line, &o); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		observations = append(observations, o)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning observations: %w", err)
	}
	return observations, nil
}

// yamlDocument is the keyed form of a YAML observation file.
type yamlDocument struct {
	Observations []models.Observation `yaml:"observations"`
}

// decodeYAML accepts either a bare sequence of observations or a mapping
// with an "observations" key.
func decodeYAML(r io.Reader) ([]models.Observation, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("parsing YAML observations: %w", err)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]
	switch doc.Kind {
	case yaml.SequenceNode:
		var observations []models.Observation
		if err := doc.Decode(&observations); err != nil {
			return nil, fmt.Errorf("decoding YAML observation list: %w", err)
		}
		return observations, nil
	case yaml.MappingNode:
		var d yamlDocument
		if err := doc.Decode(&d); err != nil {
			return nil, fmt.Errorf("decoding YAML observations: %w", err)
		}
		return d.Observations, nil
	default:
		return nil, fmt.Errorf("YAML observations must be a list or a mapping with an observations key")
	}
}

// Load records observations into log in order. Observations carrying
// ObservedAt keep that instant; the rest are stamped by the log's clock.
// It returns the number recorded.
func Load(log observability.PatternLog, observations []models.Observation) int {
	for _, o := range observations {
		if o.ObservedAt != nil {
			log.RecordAt(o, *o.ObservedAt)
			continue
		}
		log.Record(o)
	}
	return len(observations)
}
