package types

import (
	"context"
	"errors"
)

// Erros de ingestão. São expostos ao usuário através do DashboardController.
var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrEmptyOrMalformed  = errors.New("file is empty or malformed")
	ErrTruncated         = errors.New("file was truncated while reading")
)

// ErrStaleSession marks a completion that belongs to a superseded session. Never user visible.
var ErrStaleSession = errors.New("stale session")

var (
	ErrUnknownInstanceType = errors.New("unknown instance type")
	ErrNoInput             = errors.New("no input files given. Pass at least one CSV, JSON or TXT usage export")
	ErrNoReportProduced    = errors.New("none of the given files produced a usage report")
	ErrInvalidConfig       = errors.New("invalid configuration")
)

// Rótulos da taxonomia de erros, usados em métricas e mensagens.
const (
	KindUnsupportedFormat = "unsupported_format"
	KindEmptyOrMalformed  = "empty_or_malformed"
	KindTruncated         = "truncated"
	KindStaleSession      = "stale_session"
	KindCanceled          = "canceled"
	KindUnknown           = "unknown"
)

// IngestionErrorKind maps an error to its taxonomy label.
func IngestionErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedFormat):
		return KindUnsupportedFormat
	case errors.Is(err, ErrEmptyOrMalformed):
		return KindEmptyOrMalformed
	case errors.Is(err, ErrTruncated), errors.Is(err, context.DeadlineExceeded):
		return KindTruncated
	case errors.Is(err, ErrStaleSession):
		return KindStaleSession
	case errors.Is(err, context.Canceled):
		return KindCanceled
	default:
		return KindUnknown
	}
}

// UserMessage devolve uma mensagem amigável para exibição no console.
func UserMessage(err error) string {
	switch IngestionErrorKind(err) {
	case KindUnsupportedFormat:
		return "This file type is not supported. Upload a CSV, JSON or TXT usage export."
	case KindEmptyOrMalformed:
		return "The file has no usable billing rows: " + err.Error()
	case KindTruncated:
		return "The file could not be read completely: " + err.Error()
	case KindCanceled:
		return "The analysis was canceled."
	default:
		return err.Error()
	}
}
