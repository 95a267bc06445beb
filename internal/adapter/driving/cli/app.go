package cli

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/diillson/cloud-optimizer-go/internal/application/usecase"
	"github.com/diillson/cloud-optimizer-go/internal/shared/types"
	"github.com/diillson/cloud-optimizer-go/pkg/version"
)

// CLIApp represents the command-line interface application.
type CLIApp struct {
	rootCmd          *cobra.Command
	dashboardUseCase *usecase.DashboardUseCase
	version          string
}

// NewCLIApp cria uma nova aplicação CLI.
func NewCLIApp(versionStr string) *CLIApp {
	app := &CLIApp{
		version: versionStr,
	}

	// Obtem a versão formatada
	formattedVersion := version.FormatVersion()

	rootCmd := &cobra.Command{
		Use:   "cloud-optimizer [flags] FILE|s3://bucket/key ...",
		Short: "Cloud Optimizer: rightsizing and savings report from billing usage exports",
		Long: `Cloud Optimizer reads cloud billing usage exports (CSV, JSON or TXT) and shows
instance utilization tiers, rightsizing recommendations, projected savings and a cost trend.`,
		Version: formattedVersion,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return types.ErrNoInput
			}
			return nil
		},
		RunE:          app.runCommand,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{printf "Cloud Optimizer version: %s\n" .Version}}`)

	// Adiciona flags de linha de comando
	rootCmd.PersistentFlags().StringP("config-file", "C", "", "Path to a TOML, YAML, or JSON configuration file")
	rootCmd.PersistentFlags().StringP("report-name", "n", "", "Specify the base name for the report file (without extension)")
	rootCmd.PersistentFlags().StringSliceP("report-type", "y", nil, "Specify report types: csv, json, pdf (default: csv when --report-name is set)")
	rootCmd.PersistentFlags().StringP("dir", "d", "", "Directory to save the report files (default: current directory)")
	rootCmd.PersistentFlags().Float64P("savings-fraction", "s", usecase.DefaultSavingsFraction, "Fraction of current cost projected as savings per instance (0-1)")
	rootCmd.PersistentFlags().Duration("timeout", usecase.DefaultIngestionTimeout, "Maximum time to analyse one file")
	rootCmd.PersistentFlags().String("catalog", "", "Instance catalog used for rightsizing: static or ec2 (default: static)")
	rootCmd.PersistentFlags().StringP("profile", "p", "", "AWS profile used for s3:// inputs and the ec2 catalog")
	rootCmd.PersistentFlags().StringP("region", "r", "", "AWS region used for s3:// inputs and the ec2 catalog")
	rootCmd.PersistentFlags().String("log-level", "", "Diagnostic log level: debug, info, warn, error (default: warn)")
	rootCmd.PersistentFlags().String("metrics-file", "", "Write Prometheus metrics in textfile format to this path")

	app.rootCmd = rootCmd
	return app
}

// Execute runs the CLI application.
func (app *CLIApp) Execute() error {
	return app.rootCmd.Execute()
}

// parseArgs parses command-line arguments into a CLIArgs struct.
// Flags not given explicitly stay empty so that the config file can fill them.
func (app *CLIApp) parseArgs(inputs []string) (*types.CLIArgs, error) {
	flags := app.rootCmd.Flags()

	configFile, _ := flags.GetString("config-file")
	reportName, _ := flags.GetString("report-name")
	reportType, _ := flags.GetStringSlice("report-type")
	dir, _ := flags.GetString("dir")
	catalog, _ := flags.GetString("catalog")
	profile, _ := flags.GetString("profile")
	region, _ := flags.GetString("region")
	logLevel, _ := flags.GetString("log-level")
	metricsFile, _ := flags.GetString("metrics-file")

	// Convert to absolute path
	if dir != "" {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return nil, err
		}
		dir = absDir
	}

	args := &types.CLIArgs{
		Inputs:      inputs,
		ConfigFile:  configFile,
		ReportName:  reportName,
		ReportType:  reportType,
		Dir:         dir,
		Catalog:     catalog,
		Profile:     profile,
		Region:      region,
		LogLevel:    logLevel,
		MetricsFile: metricsFile,
	}

	if flags.Changed("savings-fraction") {
		fraction, _ := flags.GetFloat64("savings-fraction")
		args.SavingsFraction = &fraction
	}
	if flags.Changed("timeout") {
		timeout, _ := flags.GetDuration("timeout")
		args.Timeout = &timeout
	}

	return args, nil
}

// runCommand é o ponto de entrada principal para o comando CLI.
func (app *CLIApp) runCommand(cmd *cobra.Command, args []string) error {
	// Exibe o banner de boas-vindas
	displayWelcomeBanner(app.version)

	// Verifica a versão mais recente disponível
	go checkLatestVersion(app.version)

	cliArgs, err := app.parseArgs(args)
	if err != nil {
		return err
	}

	// Ctrl+C cancela a análise em andamento
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return app.dashboardUseCase.RunDashboard(ctx, cliArgs)
}

// SetDashboardUseCase sets the dashboard use case for the CLI app.
func (app *CLIApp) SetDashboardUseCase(useCase *usecase.DashboardUseCase) {
	app.dashboardUseCase = useCase
}
