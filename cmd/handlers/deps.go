package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"blogforge/internal/config"
	"blogforge/internal/ideation"
	"blogforge/internal/llm"
	"blogforge/internal/persistence"
	"blogforge/internal/trends"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	mutedStyle   = lipgloss.NewStyle().Faint(true)
	ruleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

const rule = "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━"

// openStore connects to the configured database
func openStore(ctx context.Context) (persistence.Store, error) {
	cfg := config.Get()
	store, err := persistence.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := store.Ping(ctx); err != nil {
		store.Close()
		return nil, fmt.Errorf("database ping failed: %w\n\n"+
			"Make sure the database is running and the connection string is correct.\n"+
			"Run 'blogforge migrate up' to initialize the database schema.", err)
	}
	return store, nil
}

// newLLMClient builds the configured model client
func newLLMClient(ctx context.Context) (llm.Client, error) {
	client, err := llm.NewClient(ctx, config.Get())
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}
	return client, nil
}

// newFetcher builds the configured trends fetcher
func newFetcher() (*trends.Fetcher, error) {
	fetcher, err := trends.NewFetcherFromConfig(config.Get())
	if err != nil {
		return nil, fmt.Errorf("failed to create trends provider: %w", err)
	}
	return fetcher, nil
}

// newPipeline wires an ideation pipeline over store from configuration
func newPipeline(ctx context.Context, store ideation.ProjectStore) (*ideation.Pipeline, llm.Client, error) {
	client, err := newLLMClient(ctx)
	if err != nil {
		return nil, nil, err
	}
	fetcher, err := newFetcher()
	if err != nil {
		return nil, nil, err
	}
	return ideation.NewPipeline(store, client, fetcher, config.Get().Pipeline.TrendConcurrency), client, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printHeader(title string) {
	fmt.Println(headerStyle.Render(title))
	fmt.Println(ruleStyle.Render(rule))
}
