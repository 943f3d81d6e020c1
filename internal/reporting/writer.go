package reporting

import (
	"fmt"
	"os"
	"path/filepath"

	"polymarket-lab/internal/observability"
)

// Output file names, relative to the market directory.
const (
	MarkdownFile = "REPORT.md"
	MarketFile   = "market.csv"
	SeriesFile   = "series.csv"
	StrategyFile = "strategies.csv"
)

// WriteFiles renders r into dir/<market id>/ and returns the written paths.
func WriteFiles(dir string, r *Report) ([]string, error) {
	if r == nil || r.Market == nil {
		return nil, ErrIncompleteResult
	}

	marketDir := filepath.Join(dir, r.Market.MarketID)
	if err := os.MkdirAll(marketDir, 0755); err != nil {
		return nil, err
	}

	files := []struct {
		name    string
		content string
	}{
		{MarkdownFile, RenderMarkdown(r)},
		{MarketFile, RenderMarketCSV(r.Market)},
		{SeriesFile, RenderSeriesCSV(r.Series)},
		{StrategyFile, RenderStrategyCSV(r.Strategies)},
	}

	paths := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(marketDir, f.name)
		if err := os.WriteFile(path, []byte(f.content), 0644); err != nil {
			return paths, fmt.Errorf("write %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	observability.RecordReportGenerated()
	return paths, nil
}
