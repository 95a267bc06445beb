package ingest

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
	"github.com/diillson/cloud-optimizer-go/internal/shared/types"
)

// Formatos suportados.
const (
	FormatCSV  = "csv"
	FormatTSV  = "tsv"
	FormatJSON = "json"
	FormatText = "text"
)

// CSVParser lê exports delimitados com cabeçalho (CSV ou TSV).
type CSVParser struct {
	comma  rune
	format string
}

// NewCSVParser cria um parser para arquivos separados por vírgula.
func NewCSVParser() *CSVParser {
	return &CSVParser{comma: ',', format: FormatCSV}
}

// NewTSVParser cria um parser para arquivos separados por tab.
func NewTSVParser() *CSVParser {
	return &CSVParser{comma: '\t', format: FormatTSV}
}

func (p *CSVParser) Format() string {
	return p.format
}

// Parse reads every record and maps the header onto billing lines.
func (p *CSVParser) Parse(ctx context.Context, data []byte) ([]entity.BillingLine, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = p.comma
	reader.TrimLeadingSpace = true

	var records [][]string
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				return nil, fmt.Errorf("%w: %v", types.ErrEmptyOrMalformed, parseErr)
			}
			return nil, fmt.Errorf("%w: %v", types.ErrTruncated, err)
		}
		records = append(records, record)
	}

	return parseRecords(ctx, records)
}
