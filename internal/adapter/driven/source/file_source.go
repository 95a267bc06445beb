package source

import (
	"context"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
	"github.com/diillson/cloud-optimizer-go/internal/domain/repository"
)

// FileSource abre arquivos do disco local.
type FileSource struct{}

// NewFileSource cria um novo FileSource.
func NewFileSource() *FileSource {
	return &FileSource{}
}

func (s *FileSource) Supports(location string) bool {
	return !strings.Contains(location, "://")
}

// Open opens the file for reading. The caller owns the body; closing is done through
// the returned upload's Body when it implements io.Closer.
func (s *FileSource) Open(ctx context.Context, location string) (*entity.Upload, error) {
	fileInfo, err := os.Stat(location)
	if err != nil {
		return nil, fmt.Errorf("error accessing usage file: %w", err)
	}
	if fileInfo.IsDir() {
		return nil, fmt.Errorf("%s is a directory, not a file", location)
	}

	file, err := os.Open(location)
	if err != nil {
		return nil, fmt.Errorf("error opening usage file: %w", err)
	}

	return &entity.Upload{
		Name:      filepath.Base(location),
		MediaType: mime.TypeByExtension(strings.ToLower(filepath.Ext(location))),
		Size:      fileInfo.Size(),
		Body:      file,
	}, nil
}

// Router delega para o primeiro UploadSource que suporta o local.
type Router struct {
	sources []repository.UploadSource
}

// NewRouter cria um Router com as fontes informadas, na ordem de prioridade.
func NewRouter(sources ...repository.UploadSource) repository.UploadSource {
	return &Router{sources: sources}
}

func (r *Router) Supports(location string) bool {
	for _, s := range r.sources {
		if s.Supports(location) {
			return true
		}
	}
	return false
}

func (r *Router) Open(ctx context.Context, location string) (*entity.Upload, error) {
	for _, s := range r.sources {
		if s.Supports(location) {
			return s.Open(ctx, location)
		}
	}
	return nil, fmt.Errorf("no source can open %s", location)
}
