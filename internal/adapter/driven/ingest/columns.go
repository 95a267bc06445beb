package ingest

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
	"github.com/diillson/cloud-optimizer-go/internal/shared/types"
)

type field int

const (
	fieldID field = iota
	fieldType
	fieldCPU
	fieldMemory
	fieldCost
	fieldPeriod
	fieldCount
)

var fieldNames = [fieldCount]string{"instance id", "instance type", "utilization", "memory", "cost", "period"}

// Aliases aceitos para cada coluna, já normalizados (ver normalizeKey).
// Cobre o formato esperado pelo dashboard, AWS CUR e exports de custo do Azure.
var fieldAliases = map[string]field{
	"id":                         fieldID,
	"instance":                   fieldID,
	"instanceid":                 fieldID,
	"resourceid":                 fieldID,
	"lineitemresourceid":         fieldID,
	"type":                       fieldType,
	"instancetype":               fieldType,
	"productinstancetype":        fieldType,
	"size":                       fieldType,
	"vmsize":                     fieldType,
	"sku":                        fieldType,
	"usage":                      fieldCPU,
	"utilization":                fieldCPU,
	"utilizationpercent":         fieldCPU,
	"cpu":                        fieldCPU,
	"cpuusage":                   fieldCPU,
	"cpuutilization":             fieldCPU,
	"cpupercent":                 fieldCPU,
	"memory":                     fieldMemory,
	"memoryusage":                fieldMemory,
	"memusage":                   fieldMemory,
	"memoryutilization":          fieldMemory,
	"memorypercent":              fieldMemory,
	"cost":                       fieldCost,
	"monthlycost":                fieldCost,
	"unblendedcost":              fieldCost,
	"lineitemunblendedcost":      fieldCost,
	"pretaxcost":                 fieldCost,
	"costinbillingcurrency":      fieldCost,
	"costusd":                    fieldCost,
	"amount":                     fieldCost,
	"period":                     fieldPeriod,
	"month":                      fieldPeriod,
	"billingperiod":              fieldPeriod,
	"date":                       fieldPeriod,
	"usagedate":                  fieldPeriod,
	"lineitemusagestartdate":     fieldPeriod,
	"billbillingperiodstartdate": fieldPeriod,
	"billingperiodstartdate":     fieldPeriod,
}

var requiredFields = []field{fieldID, fieldType, fieldCPU, fieldCost}

// normalizeKey keeps only lower-case letters and digits: "lineItem/ResourceId" -> "lineitemresourceid".
func normalizeKey(key string) string {
	var b strings.Builder
	for _, r := range key {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}

// schema guarda a posição de cada campo conhecido no cabeçalho (-1 quando ausente).
type schema [fieldCount]int

func resolveSchema(header []string) (schema, error) {
	var s schema
	for i := range s {
		s[i] = -1
	}
	for pos, name := range header {
		f, ok := fieldAliases[normalizeKey(name)]
		if ok && s[f] == -1 {
			s[f] = pos
		}
	}

	var missing []string
	for _, f := range requiredFields {
		if s[f] == -1 {
			missing = append(missing, fieldNames[f])
		}
	}
	if len(missing) > 0 {
		return s, fmt.Errorf("%w: no %s column found in header", types.ErrUnsupportedFormat, strings.Join(missing, ", "))
	}
	return s, nil
}

func (s schema) value(record []string, f field) string {
	pos := s[f]
	if pos < 0 || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

// parseRecords converte registros tabulares (o primeiro é o cabeçalho) em linhas de cobrança.
func parseRecords(ctx context.Context, records [][]string) ([]entity.BillingLine, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no header row", types.ErrEmptyOrMalformed)
	}

	s, err := resolveSchema(records[0])
	if err != nil {
		return nil, err
	}

	lines := make([]entity.BillingLine, 0, len(records)-1)
	for i, record := range records[1:] {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if isBlank(record) {
			continue
		}
		line, err := buildLine(i+2, s, record)
		if err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: header found but no billing rows", types.ErrEmptyOrMalformed)
	}
	return lines, nil
}

func buildLine(row int, s schema, record []string) (entity.BillingLine, error) {
	line := entity.BillingLine{
		Row:          row,
		InstanceID:   s.value(record, fieldID),
		InstanceType: s.value(record, fieldType),
	}
	if line.InstanceID == "" {
		return line, fmt.Errorf("%w: row %d: missing instance id", types.ErrEmptyOrMalformed, row)
	}

	cpu, err := parsePercent(s.value(record, fieldCPU))
	if err != nil {
		return line, fmt.Errorf("%w: row %d: utilization: %v", types.ErrEmptyOrMalformed, row, err)
	}
	line.CPUPercent = cpu

	if raw := s.value(record, fieldMemory); raw != "" {
		mem, err := parsePercent(raw)
		if err != nil {
			return line, fmt.Errorf("%w: row %d: memory: %v", types.ErrEmptyOrMalformed, row, err)
		}
		line.MemoryPercent = &mem
	}

	cost, err := parseAmount(s.value(record, fieldCost))
	if err != nil {
		return line, fmt.Errorf("%w: row %d: cost: %v", types.ErrEmptyOrMalformed, row, err)
	}
	if cost < 0 {
		return line, fmt.Errorf("%w: row %d: cost %.2f is negative", types.ErrEmptyOrMalformed, row, cost)
	}
	line.Cost = cost

	line.Period, line.PeriodStart = parsePeriod(s.value(record, fieldPeriod))
	return line, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// parseAmount aceita "$1,234.50", "1234.5" e " 12 ".
func parseAmount(raw string) (float64, error) {
	v := strings.TrimSpace(raw)
	v = strings.TrimPrefix(v, "US$")
	v = strings.TrimPrefix(v, "$")
	v = strings.ReplaceAll(v, ",", "")
	v = strings.TrimSpace(v)
	if v == "" {
		return 0, fmt.Errorf("missing value")
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("%q is not a number", raw)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("%q is not a finite number", raw)
	}
	return n, nil
}

func parsePercent(raw string) (float64, error) {
	n, err := parseAmount(strings.TrimSuffix(strings.TrimSpace(raw), "%"))
	if err != nil {
		return 0, err
	}
	if n < 0 || n > 100 {
		return 0, fmt.Errorf("%v is outside 0-100", n)
	}
	return n, nil
}

var periodLayouts = []string{
	"2006-01",
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"01/2006",
	"Jan 2006",
	"January 2006",
	"2006/01",
}

// parsePeriod normaliza um período reconhecido para "YYYY-MM"; caso contrário devolve o texto original.
func parsePeriod(raw string) (string, time.Time) {
	if raw == "" {
		return "", time.Time{}
	}
	candidates := []string{raw}
	// bill/BillingPeriodStartDate às vezes vem como intervalo "start/end".
	if strings.Contains(raw, "T") && strings.Contains(raw, "/") {
		candidates = append(candidates, strings.SplitN(raw, "/", 2)[0])
	}
	for _, c := range candidates {
		for _, layout := range periodLayouts {
			if t, err := time.Parse(layout, c); err == nil {
				start := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
				return start.Format("2006-01"), start
			}
		}
	}
	return raw, time.Time{}
}
