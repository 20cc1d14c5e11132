package main

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ayamoughit/Tp4testMoughit/internal/assistant"
	"github.com/ayamoughit/Tp4testMoughit/internal/config"
	"github.com/ayamoughit/Tp4testMoughit/internal/embedding"
	"github.com/ayamoughit/Tp4testMoughit/internal/ingest"
	"github.com/ayamoughit/Tp4testMoughit/internal/llm"
	"github.com/ayamoughit/Tp4testMoughit/internal/memory"
	"github.com/ayamoughit/Tp4testMoughit/internal/retrieval"
	"github.com/ayamoughit/Tp4testMoughit/internal/splitter"
	"github.com/ayamoughit/Tp4testMoughit/internal/vectorstore"
	"github.com/ayamoughit/Tp4testMoughit/internal/websearch"
)

// session holds the wired components of one chat session.
type session struct {
	assistant *assistant.Assistant
	pipeline  *ingest.Pipeline
}

// buildSession assembles the full pipeline from configuration: store,
// embedder, retrievers, routing table, router, augmentor, memory, model.
func buildSession(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*session, error) {
	sp, err := splitter.New(cfg.Splitter, logger)
	if err != nil {
		return nil, err
	}

	embedder, err := embedding.NewOpenAI(embedding.Config{
		BaseURL: cfg.Embedding.BaseURL,
		APIKey:  cfg.Keys.OpenAI,
		Model:   cfg.Embedding.Model,
	}, logger)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(cfg, logger)
	if err != nil {
		return nil, err
	}

	pipeline, err := ingest.New(cfg.Ingest, sp, embedder, store, logger)
	if err != nil {
		return nil, err
	}

	model, err := buildModel(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	table, err := buildTable(cfg, store, embedder, logger)
	if err != nil {
		return nil, err
	}

	var router retrieval.Router
	if routerMode == "model" {
		router, err = retrieval.NewModelRouter(model, table, logger)
	} else {
		router, err = retrieval.NewStaticRouter(table)
	}
	if err != nil {
		return nil, err
	}

	augmentor, err := retrieval.NewAugmentor(router, table, logger)
	if err != nil {
		return nil, err
	}

	window, err := memory.NewWindow(cfg.Memory.Window)
	if err != nil {
		return nil, err
	}

	asst, err := assistant.New(augmentor, model, window, logger)
	if err != nil {
		return nil, err
	}

	return &session{assistant: asst, pipeline: pipeline}, nil
}

func buildStore(cfg *config.Config, logger *zap.Logger) (vectorstore.Store, error) {
	switch cfg.Store.Backend {
	case "chromem":
		return vectorstore.NewChromemStore(vectorstore.ChromemConfig{
			Collection: cfg.Store.Collection,
		}, logger)
	default:
		return vectorstore.NewMemoryStore(logger), nil
	}
}

func buildModel(ctx context.Context, cfg *config.Config, logger *zap.Logger) (llm.ChatModel, error) {
	switch cfg.Chat.Provider {
	case "openai":
		return llm.NewOpenAI(llm.OpenAIConfig{
			BaseURL:     cfg.Chat.BaseURL,
			APIKey:      cfg.Keys.OpenAI,
			Model:       cfg.Chat.Model,
			Temperature: cfg.Chat.Temperature,
		}, logger)
	default:
		return llm.NewGemini(ctx, llm.GeminiConfig{
			APIKey:      cfg.Keys.Gemini,
			Model:       cfg.Chat.Model,
			Temperature: cfg.Chat.Temperature,
		}, logger)
	}
}

// buildTable declares the routing table. Order matters: merged evidence
// follows this order, so the document store route comes first.
func buildTable(cfg *config.Config, store vectorstore.Store, embedder embedding.Embedder, logger *zap.Logger) (retrieval.Table, error) {
	vr, err := retrieval.NewVectorRetriever(store, embedder,
		cfg.Retrieval.MaxResults, float32(cfg.Retrieval.MinScore), logger)
	if err != nil {
		return nil, err
	}

	table := retrieval.Table{
		{
			ID:          "documents",
			Description: "the indexed local documents",
			Retriever:   vr,
		},
	}

	if cfg.Websearch.Enabled {
		if cfg.Keys.Tavily == "" {
			return nil, fmt.Errorf("web search enabled but TAVILY_API_KEY is not set")
		}
		engine, err := websearch.NewTavily(websearch.TavilyConfig{
			Endpoint:          cfg.Websearch.Endpoint,
			APIKey:            cfg.Keys.Tavily,
			MaxResults:        cfg.Websearch.MaxResults,
			RequestsPerSecond: cfg.Websearch.RequestsPerSecond,
			Timeout:           15 * time.Second,
		}, logger)
		if err != nil {
			return nil, err
		}
		wr, err := retrieval.NewWebRetriever(engine, logger)
		if err != nil {
			return nil, err
		}
		table = append(table, retrieval.Route{
			ID:          "web",
			Description: "live web search for current events and facts not in the documents",
			Retriever:   wr,
		})
	}

	return table, nil
}
