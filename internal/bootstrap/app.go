package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/locvowork/enrollment_report/internal/config"
	"github.com/locvowork/enrollment_report/internal/database"
	"github.com/locvowork/enrollment_report/internal/handler"
	"github.com/locvowork/enrollment_report/internal/logger"
	"github.com/locvowork/enrollment_report/internal/report"
	"github.com/locvowork/enrollment_report/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type App struct {
	Echo    *echo.Echo
	Service *service.ReportService
	Layout  *config.ReportLayout
}

func NewApp() *App {
	return &App{
		Echo: echo.New(),
	}
}

// LoadLayout returns the layout named by REPORT_CONFIG_PATH, or the embedded
// default when it is unset.
func LoadLayout(env *config.EnvConfig) (*config.ReportLayout, error) {
	return config.LoadLayout(env.REPORT_CONFIG_PATH)
}

// NewReportService wires the datastore client and the report pipeline.
func NewReportService(env *config.EnvConfig, layout *config.ReportLayout) (*service.ReportService, error) {
	cfg, err := config.NewReportConfig(env, layout)
	if err != nil {
		return nil, err
	}

	client, err := database.NewDatastoreClient(cfg.BaseURL,
		database.WithHTTPClient(&http.Client{Timeout: env.HTTP_TIMEOUT}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize datastore client: %w", err)
	}

	return service.NewReportService(
		client,
		service.NewPivotTableBuilder(cfg.Tables, cfg.GroupDelimiter),
		report.NewAssembler(cfg.GroupDelimiter),
		report.NewExporter(cfg.GroupDelimiter, layout.SheetNames()),
		cfg.FixedTableOrder,
	), nil
}

func (a *App) Initialize(ctx context.Context) error {
	// Load environment configuration
	if err := config.LoadEnvConfig(); err != nil {
		return fmt.Errorf("failed to load env config: %w", err)
	}
	env := config.DefaultEnvConfig

	// Initialize logging
	logger.InitLogging(env.LOG_FILE_PATH, env.LOG_LEVEL)
	logger.InfoLog(ctx, "Environment variables loaded successfully")

	layout, err := LoadLayout(env)
	if err != nil {
		return fmt.Errorf("failed to load report layout: %w", err)
	}
	a.Layout = layout

	svc, err := NewReportService(env, layout)
	if err != nil {
		return err
	}
	a.Service = svc
	logger.InfoLog(ctx, "Report pipeline ready with %d tables", len(layout.Tables))

	reportHandler := handler.NewReportHandler(svc)

	// Register Middlewares
	a.RegisterMiddlewares()

	// Register Routes
	a.RegisterRoutes(env.REQUESTS_PATHNAME_PREFIX, reportHandler)

	return nil
}

func (a *App) RegisterMiddlewares() {
	a.Echo.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	a.Echo.Use(middleware.Logger())
	a.Echo.Use(middleware.Recover())
	a.Echo.Use(middleware.CORS())
}

func (a *App) RegisterRoutes(prefix string, reportHandler *handler.ReportHandler) {
	a.Echo.GET("/healthz", reportHandler.HealthHandler)
	a.Echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	reportGroup := a.Echo.Group(routePrefix(prefix) + "report")
	reportGroup.GET("", reportHandler.ReportHandler)
	reportGroup.GET("/export", reportHandler.ExportHandler)
}

func (a *App) Run() error {
	return a.Echo.Start(":" + config.DefaultEnvConfig.APP_PORT)
}

// routePrefix normalizes a pathname prefix to "/" or "/x/".
func routePrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return "/"
	}
	return "/" + prefix + "/"
}
