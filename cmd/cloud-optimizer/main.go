package main

import (
	"context"
	"fmt"
	"os"

	"github.com/diillson/cloud-optimizer-go/internal/adapter/driven/catalog"
	"github.com/diillson/cloud-optimizer-go/internal/adapter/driven/config"
	"github.com/diillson/cloud-optimizer-go/internal/adapter/driven/export"
	"github.com/diillson/cloud-optimizer-go/internal/adapter/driven/ingest"
	"github.com/diillson/cloud-optimizer-go/internal/adapter/driven/source"
	"github.com/diillson/cloud-optimizer-go/internal/adapter/driving/cli"
	"github.com/diillson/cloud-optimizer-go/internal/application/usecase"
	"github.com/diillson/cloud-optimizer-go/internal/domain/repository"
	"github.com/diillson/cloud-optimizer-go/internal/shared/types"
	"github.com/diillson/cloud-optimizer-go/pkg/console"
	"github.com/diillson/cloud-optimizer-go/pkg/version"
)

func main() {
	// Inicializa o aplicativo CLI
	app := cli.NewCLIApp(version.Version)

	// Inicializa os repositórios
	exportRepo := export.NewExportRepository()
	configRepo := config.NewConfigRepository()
	consoleImpl := console.NewConsole()

	// Fontes locais e S3; o cliente S3 só é criado quando um s3:// aparece
	sources := func(profile, region string) repository.UploadSource {
		return source.NewRouter(source.NewFileSource(), source.NewS3Source(profile, region))
	}

	catalogs := func(ctx context.Context, kind, profile, region string) (repository.InstanceCatalog, error) {
		switch kind {
		case usecase.CatalogEC2:
			c, err := catalog.NewEC2CatalogFromConfig(ctx, profile, region)
			if err != nil {
				return nil, err
			}
			return c, nil
		case usecase.CatalogStatic, "":
			return catalog.NewStaticCatalog(), nil
		default:
			return nil, fmt.Errorf("%w: unknown catalog %q", types.ErrInvalidConfig, kind)
		}
	}

	// Inicializa o caso de uso
	dashboardUseCase := usecase.NewDashboardUseCase(
		ingest.NewRegistry(),
		sources,
		catalogs,
		exportRepo,
		configRepo,
		consoleImpl,
	)

	app.SetDashboardUseCase(dashboardUseCase)

	// Executa o aplicativo
	if err := app.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
