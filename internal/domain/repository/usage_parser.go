package repository

import (
	"context"

	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
)

// UsageParser converte o conteúdo bruto de um export em linhas de cobrança.
type UsageParser interface {
	// Format returns the format label, e.g. "csv".
	Format() string
	Parse(ctx context.Context, data []byte) ([]entity.BillingLine, error)
}

// ParserResolver escolhe o parser adequado a partir do nome, media type e conteúdo.
type ParserResolver interface {
	Resolve(name, mediaType string, data []byte) (UsageParser, error)
}
