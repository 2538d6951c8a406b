package main

import (
	"context"
	"time"

	"github.com/k-capehart/go-salesforce/v3"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/screener/internal/fetcher"
	"github.com/sells-group/screener/internal/invoke"
	"github.com/sells-group/screener/internal/model"
	"github.com/sells-group/screener/internal/normalize"
	"github.com/sells-group/screener/internal/registry"
	"github.com/sells-group/screener/internal/report"
	"github.com/sells-group/screener/internal/screen"
	"github.com/sells-group/screener/internal/source"
	"github.com/sells-group/screener/internal/store"
	anthropicpkg "github.com/sells-group/screener/pkg/anthropic"
	"github.com/sells-group/screener/pkg/coresignal"
	"github.com/sells-group/screener/pkg/notion"
	"github.com/sells-group/screener/pkg/perplexity"
	sfpkg "github.com/sells-group/screener/pkg/salesforce"
	"github.com/sells-group/screener/pkg/scraper"
	"github.com/sells-group/screener/pkg/serper"
	"github.com/sells-group/screener/pkg/tracxn"
)

// screenEnv holds the initialized store, adapter registry, schema, and
// orchestrator shared by the screen/serve commands.
type screenEnv struct {
	Store    store.Store
	Registry *source.Registry
	Schema   *report.Schema
	Screener *screen.Orchestrator
}

// Close releases resources held by the environment.
func (e *screenEnv) Close() {
	if e.Store != nil {
		_ = e.Store.Close()
	}
}

// screenOptions derives the per-request option defaults from config.
func screenOptions() model.Options {
	return model.Options{
		TimeoutSeconds:       cfg.Screen.TimeoutSeconds,
		Sources:              cfg.Screen.Sources,
		MaxModelRetries:      cfg.Screen.MaxModelRetries,
		MaxValidationRetries: cfg.Screen.MaxValidationRetries,
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "memory":
		return store.NewMemory(), nil
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "screener.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &store.PoolConfig{
			MaxConns: cfg.Store.MaxConns,
			MinConns: cfg.Store.MinConns,
		})
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initSources builds the adapter registry from configured providers.
// Sources without credentials are left unregistered; the pipeline treats a
// smaller registry as fewer sources, not an error.
func initSources() (*source.Registry, error) {
	reg := source.NewRegistry()

	adapters := []source.Adapter{
		source.NewWebsiteAdapter(scraper.NewClient(cfg.Scraper.Key, scraper.WithBaseURL(cfg.Scraper.BaseURL))),
	}

	if cfg.Serper.Key != "" {
		adapters = append(adapters, source.NewSearchAdapter(
			serper.NewClient(cfg.Serper.Key, serper.WithBaseURL(cfg.Serper.BaseURL))))
	}
	if cfg.Perplexity.Key != "" {
		adapters = append(adapters, source.NewResearchAdapter(
			perplexity.NewClient(cfg.Perplexity.Key,
				perplexity.WithBaseURL(cfg.Perplexity.BaseURL),
				perplexity.WithModel(cfg.Perplexity.Model))))
	}
	if cfg.CoreSignal.Key != "" {
		adapters = append(adapters, source.NewLinkedInAdapter(
			coresignal.NewClient(cfg.CoreSignal.Key, coresignal.WithBaseURL(cfg.CoreSignal.BaseURL))))
	}
	if cfg.Tracxn.Token != "" {
		adapters = append(adapters, source.NewFundingAdapter(
			tracxn.NewClient(cfg.Tracxn.Token, tracxn.WithBaseURL(cfg.Tracxn.BaseURL))))
	}
	if cfg.Filings.URL != "" {
		fetch := fetcher.New(fetcher.Options{Timeout: 60 * time.Second, MaxRetries: 3})
		adapters = append(adapters, source.NewFilingsAdapter(fetch, source.FilingsConfig{
			URL:         cfg.Filings.URL,
			Format:      cfg.Filings.Format,
			SheetName:   cfg.Filings.SheetName,
			MatchColumn: cfg.Filings.MatchColumn,
		}))
	}

	sfClient, err := initSalesforce()
	if err != nil {
		return nil, err
	}
	if sfClient != nil {
		adapters = append(adapters, source.NewCRMAdapter(sfClient))
	}

	for _, a := range adapters {
		if err := reg.Register(a); err != nil {
			return nil, err
		}
	}

	zap.L().Info("sources registered", zap.Strings("sources", reg.Names()))
	return reg, nil
}

// initSalesforce authenticates with Salesforce via the client credentials
// flow. Returns nil without error when the crm source is not configured.
func initSalesforce() (sfpkg.Client, error) {
	if cfg.Salesforce.ConsumerKey == "" {
		return nil, nil
	}

	sf, err := salesforce.Init(salesforce.Creds{
		Domain:         cfg.Salesforce.Domain,
		ConsumerKey:    cfg.Salesforce.ConsumerKey,
		ConsumerSecret: cfg.Salesforce.ConsumerSecret,
	})
	if err != nil {
		return nil, eris.Wrap(err, "init salesforce")
	}

	return sfpkg.NewClient(sf, sfpkg.WithRateLimit(cfg.Salesforce.RPS)), nil
}

// initEnv sets up the store, the adapter registry, the report schema, and
// the orchestrator. Callers should defer env.Close().
func initEnv(ctx context.Context) (*screenEnv, error) {
	if err := normalize.CheckMappings(); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	reg, err := initSources()
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	var notionClient notion.Client
	schemaDB := ""
	if cfg.Notion.Token != "" && cfg.Notion.SchemaDB != "" {
		notionClient = notion.NewClient(cfg.Notion.Token)
		schemaDB = cfg.Notion.SchemaDB
	}
	schema, err := registry.LoadSchema(ctx, notionClient, schemaDB)
	if err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "load report schema")
	}
	zap.L().Info("report schema loaded", zap.Int("fields", len(schema.Fields)))

	invoker := invoke.New(anthropicpkg.NewClient(cfg.Anthropic.Key), invoke.Config{
		Model:       cfg.Anthropic.Model,
		MaxTokens:   cfg.Anthropic.MaxTokens,
		RPS:         cfg.Anthropic.RPS,
		MaxInFlight: cfg.Anthropic.MaxInFlight,
		MaxAttempts: cfg.Screen.MaxModelRetries,
	})

	orch := screen.New(reg,
		normalize.New(cfg.Screen.SourcePriority),
		invoker,
		schema,
		cfg.Screen.PromptMaxChars,
	)

	return &screenEnv{
		Store:    st,
		Registry: reg,
		Schema:   schema,
		Screener: orch,
	}, nil
}
