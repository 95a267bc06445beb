package ingest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
	"github.com/diillson/cloud-optimizer-go/internal/shared/types"
)

// Chaves (normalizadas) que podem conter as linhas em um objeto JSON.
var rowContainerKeys = []string{"instances", "instancedata", "rows", "lines", "items"}

// JSONParser lê um array de objetos ou um objeto que contenha esse array.
type JSONParser struct{}

// NewJSONParser cria um novo JSONParser.
func NewJSONParser() *JSONParser {
	return &JSONParser{}
}

func (p *JSONParser) Format() string {
	return FormatJSON
}

func (p *JSONParser) Parse(ctx context.Context, data []byte) ([]entity.BillingLine, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var doc interface{}
	if err := decoder.Decode(&doc); err != nil {
		return nil, classifyJSONError(err)
	}
	var extra interface{}
	if err := decoder.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: unexpected content after the JSON document", types.ErrEmptyOrMalformed)
	}

	rows, err := extractRows(doc)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: JSON document has no rows", types.ErrEmptyOrMalformed)
	}

	records, err := rowsToRecords(rows)
	if err != nil {
		return nil, err
	}
	return parseRecords(ctx, records)
}

func classifyJSONError(err error) error {
	if errors.Is(err, io.ErrUnexpectedEOF) || errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: JSON document ends unexpectedly", types.ErrTruncated)
	}
	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		return fmt.Errorf("%w: invalid JSON at offset %d: %v", types.ErrEmptyOrMalformed, syntaxErr.Offset, syntaxErr)
	}
	return fmt.Errorf("%w: %v", types.ErrEmptyOrMalformed, err)
}

func extractRows(doc interface{}) ([]interface{}, error) {
	switch v := doc.(type) {
	case []interface{}:
		return v, nil
	case map[string]interface{}:
		normalized := make(map[string]interface{}, len(v))
		for k, val := range v {
			normalized[normalizeKey(k)] = val
		}
		for _, key := range rowContainerKeys {
			if rows, ok := normalized[key].([]interface{}); ok {
				return rows, nil
			}
		}
		return nil, fmt.Errorf("%w: JSON object has no instances array", types.ErrUnsupportedFormat)
	default:
		return nil, fmt.Errorf("%w: JSON document is neither an array nor an object", types.ErrUnsupportedFormat)
	}
}

// rowsToRecords achata os objetos em registros tabulares.
// O cabeçalho é a união das chaves de todas as linhas; chave ausente vira "".
// Aliases de um mesmo campo viram uma única coluna, então linhas que usam
// "cpu" e "usage" alternadamente caem na mesma posição.
func rowsToRecords(rows []interface{}) ([][]string, error) {
	objects := make([]map[string]interface{}, len(rows))
	for i, raw := range rows {
		obj, ok := raw.(map[string]interface{})
		if !ok {
			if i == 0 {
				return nil, fmt.Errorf("%w: rows must be JSON objects", types.ErrUnsupportedFormat)
			}
			return nil, fmt.Errorf("%w: row %d is not a JSON object", types.ErrEmptyOrMalformed, i+1)
		}
		objects[i] = obj
	}

	seen := make(map[string]bool)
	var header []string
	for _, obj := range objects {
		for k := range obj {
			col := columnFor(k)
			if !seen[col] {
				seen[col] = true
				header = append(header, col)
			}
		}
	}
	sort.Strings(header)
	pos := make(map[string]int, len(header))
	for i, col := range header {
		pos[col] = i
	}

	records := make([][]string, 0, len(objects)+1)
	records = append(records, header)
	for _, obj := range objects {
		keys := make([]string, 0, len(obj))
		for k := range obj {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		record := make([]string, len(header))
		for _, k := range keys {
			j := pos[columnFor(k)]
			if record[j] == "" {
				record[j] = jsonScalar(obj[k])
			}
		}
		records = append(records, record)
	}
	return records, nil
}

// columnFor devolve o nome canônico da coluna para aliases conhecidos.
func columnFor(key string) string {
	if f, ok := fieldAliases[normalizeKey(key)]; ok {
		return fieldNames[f]
	}
	return key
}

func jsonScalar(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	default:
		return fmt.Sprint(val)
	}
}
