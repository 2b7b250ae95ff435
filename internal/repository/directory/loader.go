// Package directory loads relay directories from local files.
package directory

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/relaynn/internal/domain"
	"github.com/kailas-cloud/relaynn/internal/domain/relay"
	"github.com/kailas-cloud/relaynn/internal/logger"
)

// Supported directory formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// Loader reads relay directories.
type Loader struct {
	stdin io.Reader
}

// New creates a loader reading "-" from stdin.
func New(stdin io.Reader) *Loader {
	return &Loader{stdin: stdin}
}

// Load reads all relays from path in the given format. An empty format is
// detected from the file extension; stdin defaults to JSON.
// It returns the relays in file order and the format used.
func (l *Loader) Load(ctx context.Context, path, format string) ([]relay.Relay, string, error) {
	if format == "" {
		format = DetectFormat(path)
	}

	var r io.Reader
	if path == Stdin {
		r = l.stdin
	} else {
		f, err := os.Open(filepath.Clean(path))
		if err != nil {
			return nil, format, fmt.Errorf("open directory: %w", err)
		}
		defer func() { _ = f.Close() }()
		r = f
	}

	relays, err := Decode(r, format)
	if err != nil {
		return nil, format, fmt.Errorf("decode directory %s: %w", path, err)
	}

	logger.FromContext(ctx).Info("Directory loaded",
		zap.String("path", path),
		zap.String("format", format),
		zap.Int("relays", len(relays)),
	)
	return relays, format, nil
}

// DetectFormat guesses the directory format from the file extension.
func DetectFormat(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Decode parses a directory document.
func Decode(r io.Reader, format string) ([]relay.Relay, error) {
	switch format {
	case FormatJSON:
		var doc detailsDocument
		if err := json.NewDecoder(r).Decode(&doc); err != nil {
			return nil, fmt.Errorf("parse onionoo details: %w", err)
		}
		relays := make([]relay.Relay, 0, len(doc.Relays))
		for _, o := range doc.Relays {
			relays = append(relays, o.toDomain())
		}
		return relays, nil
	case FormatYAML:
		var list relayList
		if err := yaml.NewDecoder(r).Decode(&list); err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse relay list: %w", err)
		}
		relays := make([]relay.Relay, 0, len(list.Relays))
		for _, y := range list.Relays {
			relays = append(relays, y.toDomain())
		}
		return relays, nil
	default:
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedFormat, format)
	}
}
