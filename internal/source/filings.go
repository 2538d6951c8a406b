package source

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/screener/internal/fetcher"
	"github.com/sells-group/screener/internal/model"
)

// FilingsConfig points the filings adapter at one open-data registry dump.
type FilingsConfig struct {
	// URL of the registry file; http(s) or ftp.
	URL string
	// Format is "csv" or "xlsx".
	Format string
	// SheetName selects the XLSX sheet; the first sheet when empty.
	SheetName string
	// MatchColumn is the header of the column matched against the company
	// domain (falling back to name). Defaults to "website".
	MatchColumn string
}

// FilingsAdapter looks the company up in a public registry dump (company
// registers, regulator filings) downloaded through the shared fetcher.
type FilingsAdapter struct {
	fetch fetcher.Fetcher
	cfg   FilingsConfig
}

// NewFilingsAdapter creates a filings adapter.
func NewFilingsAdapter(fetch fetcher.Fetcher, cfg FilingsConfig) *FilingsAdapter {
	if cfg.MatchColumn == "" {
		cfg.MatchColumn = "website"
	}
	return &FilingsAdapter{fetch: fetch, cfg: cfg}
}

func (a *FilingsAdapter) Name() string { return "filings" }

func (a *FilingsAdapter) Fetch(ctx context.Context, id model.Identity) model.RawRecord {
	start := time.Now()

	body, err := a.fetch.Download(ctx, a.cfg.URL)
	if err != nil {
		return model.FailedRecord(a.Name(), start, err)
	}
	defer body.Close()

	rows, err := a.parse(body)
	if err != nil {
		return model.FailedRecord(a.Name(), start, err)
	}
	if len(rows) < 2 {
		return model.FailedRecord(a.Name(), start, eris.Errorf("source: registry file %s has no data rows", a.cfg.URL))
	}

	headers := rows[0]
	matchIdx := columnIndex(headers, a.cfg.MatchColumn)
	nameIdx := columnIndex(headers, "name")

	row := findRow(rows[1:], matchIdx, strings.ToLower(id.Domain))
	if row == nil {
		row = findRow(rows[1:], nameIdx, strings.ToLower(id.Name))
	}
	if row == nil {
		return model.FailedRecord(a.Name(), start, eris.Errorf("source: company %q not in registry", id.Name))
	}

	payload := map[string]any{}
	for i, header := range headers {
		if i >= len(row) || strings.TrimSpace(row[i]) == "" {
			continue
		}
		payload[headerKey(header)] = row[i]
	}

	return okRecord(a.Name(), start, model.FetchOK, payload)
}

func (a *FilingsAdapter) parse(body io.Reader) ([][]string, error) {
	switch strings.ToLower(a.cfg.Format) {
	case "csv", "":
		return fetcher.ParseCSV(body, 0)
	case "xlsx":
		data, err := io.ReadAll(body)
		if err != nil {
			return nil, eris.Wrap(err, "source: read registry file")
		}
		return fetcher.ParseXLSX(data, fetcher.XLSXOptions{SheetName: a.cfg.SheetName})
	default:
		return nil, eris.Errorf("source: unsupported registry format %q", a.cfg.Format)
	}
}

// columnIndex finds a header by case-insensitive substring match, -1 when
// absent.
func columnIndex(headers []string, name string) int {
	name = strings.ToLower(name)
	for i, h := range headers {
		if strings.Contains(strings.ToLower(h), name) {
			return i
		}
	}
	return -1
}

// findRow returns the first row whose cell at idx contains needle.
func findRow(rows [][]string, idx int, needle string) []string {
	if idx < 0 || needle == "" {
		return nil
	}
	for _, row := range rows {
		if idx < len(row) && strings.Contains(strings.ToLower(row[idx]), needle) {
			return row
		}
	}
	return nil
}

// headerKey normalizes a column header into a payload key.
func headerKey(header string) string {
	key := strings.ToLower(strings.TrimSpace(header))
	key = strings.ReplaceAll(key, " ", "_")
	return key
}
