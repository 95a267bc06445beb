package ingest

import (
	"fmt"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/diillson/cloud-optimizer-go/internal/domain/repository"
	"github.com/diillson/cloud-optimizer-go/internal/shared/types"
)

// Registry implementa o ParserResolver.
type Registry struct {
	parsers map[string]repository.UsageParser
}

// NewRegistry cria um Registry com os parsers de CSV, JSON e texto.
func NewRegistry() repository.ParserResolver {
	return &Registry{
		parsers: map[string]repository.UsageParser{
			FormatCSV:  NewCSVParser(),
			FormatJSON: NewJSONParser(),
			FormatText: NewTextParser(),
		},
	}
}

// Resolve picks a parser. Precedence: file extension, declared media type, content sniffing.
func (r *Registry) Resolve(name, mediaType string, data []byte) (repository.UsageParser, error) {
	format, err := DetectFormat(name, mediaType, data)
	if err != nil {
		return nil, err
	}
	return r.parsers[format], nil
}

// DetectFormat devolve o formato (csv, json ou text) de um upload.
func DetectFormat(name, mediaType string, data []byte) (string, error) {
	switch ext := strings.ToLower(filepath.Ext(name)); ext {
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".txt":
		return FormatText, nil
	case "":
	default:
		return "", fmt.Errorf("%w: extension %q", types.ErrUnsupportedFormat, ext)
	}

	if mediaType != "" {
		mt, _, err := mime.ParseMediaType(mediaType)
		if err != nil {
			return "", fmt.Errorf("%w: media type %q", types.ErrUnsupportedFormat, mediaType)
		}
		switch mt {
		case "text/csv":
			return FormatCSV, nil
		case "application/json":
			return FormatJSON, nil
		case "text/plain":
			return FormatText, nil
		case "application/octet-stream", "binary/octet-stream":
			// S3 usa binary/octet-stream quando o objeto foi enviado sem content type
		default:
			return "", fmt.Errorf("%w: media type %q", types.ErrUnsupportedFormat, mt)
		}
	}

	return sniffFormat(data)
}

func sniffFormat(data []byte) (string, error) {
	detected := mimetype.Detect(data)
	switch {
	case detected.Is("application/json"):
		return FormatJSON, nil
	case detected.Is("text/csv"):
		return FormatCSV, nil
	}
	for m := detected; m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return FormatText, nil
		}
	}
	return "", fmt.Errorf("%w: content detected as %s", types.ErrUnsupportedFormat, detected.String())
}
