package ingest

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
	"github.com/diillson/cloud-optimizer-go/internal/shared/types"
)

// TextParser handles text/plain uploads by detecting the actual layout:
// JSON, comma separated, tab separated or whitespace aligned columns.
type TextParser struct {
	csv  *CSVParser
	tsv  *CSVParser
	json *JSONParser
}

// NewTextParser cria um novo TextParser.
func NewTextParser() *TextParser {
	return &TextParser{
		csv:  NewCSVParser(),
		tsv:  NewTSVParser(),
		json: NewJSONParser(),
	}
}

func (p *TextParser) Format() string {
	return FormatText
}

func (p *TextParser) Parse(ctx context.Context, data []byte) ([]entity.BillingLine, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: file has no content", types.ErrEmptyOrMalformed)
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return p.json.Parse(ctx, trimmed)
	}

	header := firstLine(string(trimmed))
	switch {
	case strings.Contains(header, ","):
		return p.csv.Parse(ctx, trimmed)
	case strings.Contains(header, "\t"):
		return p.tsv.Parse(ctx, trimmed)
	default:
		return parseColumns(ctx, string(trimmed))
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// parseColumns lê colunas separadas por espaços. Todas as linhas devem ter o mesmo número de campos.
func parseColumns(ctx context.Context, text string) ([]entity.BillingLine, error) {
	var records [][]string
	for i, line := range strings.Split(text, "\n") {
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		if len(records) > 0 && len(fields) != len(records[0]) {
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d",
				types.ErrEmptyOrMalformed, i+1, len(fields), len(records[0]))
		}
		records = append(records, fields)
	}
	return parseRecords(ctx, records)
}
