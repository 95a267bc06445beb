package repository

import (
	"github.com/diillson/cloud-optimizer-go/internal/domain/entity"
)

type ExportRepository interface {
	ExportToCSV(view *entity.PresentationView, filename string, outputDir string) (string, error)
	ExportToJSON(view *entity.PresentationView, filename string, outputDir string) (string, error)
	ExportToPDF(view *entity.PresentationView, filename string, outputDir string) (string, error)
}
