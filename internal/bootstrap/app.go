package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"kri-backend/internal/kris"
	"kri-backend/internal/llm"
	openai "kri-backend/internal/llm/openai"
	"kri-backend/internal/notify"
	"kri-backend/internal/pipeline"
	"kri-backend/internal/recommendations"
	"kri-backend/internal/scheduler"
	"kri-backend/internal/shared/config"
	"kri-backend/internal/shared/server"
	"kri-backend/internal/shared/storage/db"
	"kri-backend/internal/summaries"
)

// App holds shared dependencies built once at startup.
type App struct {
	Config         config.Config
	Router         *gin.Engine
	DB             *sql.DB
	KRIRepo        kris.Repo
	RecsRepo       recommendations.Repo
	SummariesRepo  summaries.Repo
	DashboardsRepo summaries.DashboardRepo
	LLM            llm.Client
	Mailer         notify.Sender
	Pipeline       *pipeline.Service
	Scheduler      *scheduler.Scheduler
}

// Build prepares shared dependencies and wires routes.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
	}

	buildRepos(app)
	if err := buildLLM(app); err != nil {
		return nil, err
	}
	buildMailer(app)
	buildPipeline(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:                 cfg,
		KRIHandler:             kris.NewHandler(app.KRIRepo, cfg.WindowMonths),
		RecommendationsHandler: recommendations.NewHandler(app.RecsRepo),
		PipelineHandler:        pipeline.NewHandler(app.Pipeline),
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildRepos(app *App) {
	if app.DB != nil {
		app.KRIRepo = &kris.PGRepo{DB: app.DB}
		app.RecsRepo = &recommendations.PGRepo{DB: app.DB}
		app.SummariesRepo = &summaries.PGRepo{DB: app.DB}
		app.DashboardsRepo = &summaries.PGDashboardRepo{DB: app.DB}
		return
	}
	app.KRIRepo = kris.NewMemoryRepo()
	app.RecsRepo = recommendations.NewMemoryRepo()
	app.SummariesRepo = summaries.NewMemoryRepo()
	app.DashboardsRepo = summaries.NewMemoryDashboardRepo()
}

func buildLLM(app *App) error {
	cfg := app.Config
	if strings.TrimSpace(cfg.LLMAPIKey) == "" {
		if !isDevLike(cfg.Env) {
			return fmt.Errorf("OPENAI_API_KEY is required")
		}
		log.Printf("bootstrap: OPENAI_API_KEY empty; using placeholder llm client")
		app.LLM = llm.PlaceholderClient{}
		return nil
	}
	client, err := openai.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, cfg.LLMTimeout, cfg.LLMSummaryTimeout)
	if err != nil {
		return err
	}
	app.LLM = client
	return nil
}

func buildMailer(app *App) {
	cfg := app.Config
	if strings.TrimSpace(cfg.SMTPEmail) == "" || strings.TrimSpace(cfg.SMTPPassword) == "" {
		log.Printf("bootstrap: SMTP credentials empty; summary emails will be logged")
		app.Mailer = notify.LogMailer{}
		return
	}
	app.Mailer = &notify.SMTPMailer{
		Server:         cfg.SMTPServer,
		Port:           cfg.SMTPPort,
		Email:          cfg.SMTPEmail,
		Password:       cfg.SMTPPassword,
		Timeout:        cfg.SMTPTimeout,
		AllowedDomains: cfg.AllowedDomains,
	}
}

func buildPipeline(app *App) {
	cfg := app.Config
	app.Pipeline = &pipeline.Service{
		KRIs:         app.KRIRepo,
		Recs:         app.RecsRepo,
		Summaries:    app.SummariesRepo,
		Dashboards:   app.DashboardsRepo,
		LLM:          app.LLM,
		Mailer:       app.Mailer,
		Recipients:   cfg.SummaryRecipients,
		WindowMonths: cfg.WindowMonths,
	}
	app.Scheduler = scheduler.New(app.Pipeline, cfg.ScheduleWeekday, cfg.ScheduleHour)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
