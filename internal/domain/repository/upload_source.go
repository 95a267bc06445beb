package repository

import (
	"context"

	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
)

// UploadSource abre um arquivo de uso a partir de um local (caminho ou URI).
type UploadSource interface {
	Supports(location string) bool
	Open(ctx context.Context, location string) (*entity.Upload, error)
}
