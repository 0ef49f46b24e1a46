package app

import (
	"context"
	"path/filepath"

	"github.com/kaalsec/kaalsec/internal/application/query"
	"github.com/kaalsec/kaalsec/internal/application/report"
	"github.com/kaalsec/kaalsec/internal/application/run"
	"github.com/kaalsec/kaalsec/internal/application/suggest"
	"github.com/kaalsec/kaalsec/internal/domain"
	"github.com/kaalsec/kaalsec/internal/infrastructure/audit"
	"github.com/kaalsec/kaalsec/internal/infrastructure/backend"
	"github.com/kaalsec/kaalsec/internal/infrastructure/config"
	"github.com/kaalsec/kaalsec/internal/infrastructure/executor"
	"github.com/kaalsec/kaalsec/internal/infrastructure/plugins"
	"github.com/kaalsec/kaalsec/internal/infrastructure/policy"
	"github.com/kaalsec/kaalsec/internal/infrastructure/shellctx"
	"github.com/kaalsec/kaalsec/internal/infrastructure/store"
	"github.com/kaalsec/kaalsec/internal/infrastructure/terminal"
	"github.com/kaalsec/kaalsec/internal/infrastructure/tools"
	"github.com/kaalsec/kaalsec/internal/pkg/logger"
	"github.com/kaalsec/kaalsec/internal/ports"
)

// Container wires up application services with infrastructure adapters.
type Container struct {
	Config         domain.Config
	ConfigProvider ports.ConfigProvider

	SuggestService *suggest.Service
	RunService     *run.Service
	ReportService  *report.Service
	QueryService   *query.Service

	Audit     ports.AuditLogger
	Index     ports.AuditIndex
	Store     ports.SuggestionRepository
	Policy    ports.PolicyEngine
	Discovery *tools.Discovery
	Logger    ports.Logger
}

// BuildContainer constructs the dependency graph. Configuration is loaded
// once here and passed into each component, never read as ambient state.
func BuildContainer(ctx context.Context, verbose bool) (*Container, error) {
	cfgLoader := config.NewFileLoader("")
	cfg, err := cfgLoader.Load(ctx)
	if err != nil {
		return nil, err
	}

	log := logger.NewStd(verbose)
	baseDir := config.BaseDir()

	engine, err := policy.NewEngine(cfg.Policy.RulesFile, cfg.Policy)
	if err != nil {
		log.Warn("policy rules file unusable, falling back to built-in rules",
			map[string]interface{}{"path": cfg.Policy.RulesFile, "error": err.Error()})
		engine, err = policy.NewEngine("", cfg.Policy)
		if err != nil {
			return nil, err
		}
	}

	index := audit.NewSQLiteIndex(filepath.Join(baseDir, "history.db"))
	auditLog := audit.NewFileLogger(filepath.Join(baseDir, "logs"), index, log)
	suggestionStore := store.NewFileStore(baseDir,
		store.WithTTL(cfg.SuggestionTTL()),
		store.WithKeepBatches(cfg.Suggestions.KeepBatches))

	llm, err := backend.NewFactory().ForConfig(cfg)
	if err != nil {
		return nil, err
	}

	discovery := tools.NewDiscovery()
	collector := shellctx.NewCollector("", discovery)
	pluginRepo := plugins.NewLoader("")

	suggestService := &suggest.Service{
		Backend: llm,
		Policy:  engine,
		Store:   suggestionStore,
		Plugins: pluginRepo,
		Shell:   collector,
		Logger:  log,
		Config:  cfg,
	}

	runService := &run.Service{
		Store:    suggestionStore,
		Policy:   engine,
		Executor: executor.NewLocalExecutor(cfg.Execution.Shell, cfg.Execution.ExcerptBytes, cfg.ExecutionTimeout()),
		Audit:    auditLog,
		Prompter: terminal.NewPrompter(),
		Logger:   log,
	}

	reportService := &report.Service{
		Audit:  auditLog,
		Logger: log,
	}

	queryService := &query.Service{
		Backend: llm,
		Policy:  engine,
		Logger:  log,
	}

	return &Container{
		Config:         cfg,
		ConfigProvider: cfgLoader,
		SuggestService: suggestService,
		RunService:     runService,
		ReportService:  reportService,
		QueryService:   queryService,
		Audit:          auditLog,
		Index:          index,
		Store:          suggestionStore,
		Policy:         engine,
		Discovery:      discovery,
		Logger:         log,
	}, nil
}
