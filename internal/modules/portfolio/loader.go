// Package portfolio loads the list of positions evaluated on each run.
package portfolio

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aristath/riskmonitor/internal/domain"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// rawEntry detects absent fields; every field is mandatory
type rawEntry struct {
	Symbol   *string  `json:"symbol" yaml:"symbol"`
	Quantity *float64 `json:"quantity" yaml:"quantity"`
	Type     *string  `json:"type" yaml:"type"`
}

// Loader reads the portfolio file. It is re-read on every call, there is no caching.
type Loader struct {
	path string
	log  zerolog.Logger
}

// NewLoader creates a loader for a JSON or YAML portfolio file
func NewLoader(path string, log zerolog.Logger) *Loader {
	return &Loader{
		path: path,
		log:  log.With().Str("component", "portfolio_loader").Logger(),
	}
}

// Load reads and decodes the portfolio
func (l *Loader) Load() ([]domain.PortfolioEntry, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read portfolio %s: %w", l.path, err)
	}

	entries, err := Parse(data, formatFor(l.path))
	if err != nil {
		return nil, fmt.Errorf("failed to parse portfolio %s: %w", l.path, err)
	}

	l.log.Debug().Int("entries", len(entries)).Str("path", l.path).Msg("Portfolio loaded")
	return entries, nil
}

// Format is the encoding of a portfolio file
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

func formatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes a sequence of {symbol, quantity, type} objects.
// A missing field fails the whole portfolio.
func Parse(data []byte, format Format) ([]domain.PortfolioEntry, error) {
	var raw []rawEntry
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	default:
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil, err
		}
	}

	entries := make([]domain.PortfolioEntry, 0, len(raw))
	for i, r := range raw {
		switch {
		case r.Symbol == nil:
			return nil, fmt.Errorf("entry %d: missing field %q", i, "symbol")
		case r.Quantity == nil:
			return nil, fmt.Errorf("entry %d (%s): missing field %q", i, *r.Symbol, "quantity")
		case r.Type == nil:
			return nil, fmt.Errorf("entry %d (%s): missing field %q", i, *r.Symbol, "type")
		}

		entries = append(entries, domain.PortfolioEntry{
			Symbol:   *r.Symbol,
			Quantity: *r.Quantity,
			Type:     *r.Type,
		})
	}

	return entries, nil
}
