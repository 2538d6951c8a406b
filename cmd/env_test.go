package main

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/screener/internal/config"
	"github.com/sells-group/screener/internal/model"
	"github.com/sells-group/screener/internal/store"
)

func setTestConfig(t *testing.T, c *config.Config) {
	t.Helper()
	orig := cfg
	cfg = c
	t.Cleanup(func() { cfg = orig })
}

func TestInitStoreMemory(t *testing.T) {
	setTestConfig(t, &config.Config{Store: config.StoreConfig{Driver: "memory"}})

	st, err := initStore(context.Background())
	require.NoError(t, err)
	defer st.Close()

	_, ok := st.(*store.MemoryStore)
	assert.True(t, ok)
}

func TestInitStoreSQLite(t *testing.T) {
	setTestConfig(t, &config.Config{Store: config.StoreConfig{
		Driver:      "sqlite",
		DatabaseURL: filepath.Join(t.TempDir(), "screener.db"),
	}})

	st, err := initStore(context.Background())
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Migrate(context.Background()))
	_, err = st.CreateJob(context.Background(), model.Identity{Domain: "acme.dev"})
	assert.NoError(t, err)
}

func TestInitStoreUnknownDriver(t *testing.T) {
	setTestConfig(t, &config.Config{Store: config.StoreConfig{Driver: "oracle"}})

	_, err := initStore(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported store driver")
}

func TestInitSourcesRegistersConfiguredAdapters(t *testing.T) {
	setTestConfig(t, &config.Config{
		Scraper:    config.ScraperConfig{BaseURL: "https://r.jina.ai"},
		Serper:     config.SerperConfig{Key: "k", BaseURL: "https://google.serper.dev"},
		Perplexity: config.PerplexityConfig{Key: "k", BaseURL: "https://api.perplexity.ai", Model: "sonar-pro"},
	})

	reg, err := initSources()
	require.NoError(t, err)

	assert.Equal(t, []string{"research", "search", "website"}, reg.Names())
}

func TestInitSourcesWebsiteAlwaysPresent(t *testing.T) {
	setTestConfig(t, &config.Config{Scraper: config.ScraperConfig{BaseURL: "https://r.jina.ai"}})

	reg, err := initSources()
	require.NoError(t, err)

	assert.Equal(t, []string{"website"}, reg.Names())
}

func TestScreenOptionsFromConfig(t *testing.T) {
	setTestConfig(t, &config.Config{Screen: config.ScreenConfig{
		TimeoutSeconds:       30,
		Sources:              []string{"website"},
		MaxModelRetries:      2,
		MaxValidationRetries: 1,
	}})

	opts := screenOptions()
	assert.Equal(t, 30, opts.TimeoutSeconds)
	assert.Equal(t, []string{"website"}, opts.Sources)
	assert.Equal(t, 2, opts.MaxModelRetries)
	assert.Equal(t, 1, opts.MaxValidationRetries)
}
