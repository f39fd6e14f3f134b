// Offline corpus builder for finrag.
// Reads article files from a data directory, embeds each article, and
// writes the embeddings artifact the API server loads at startup.
//
// Usage:
//
//	finrag-ingest -data-dir ./data -out ./embeddings.json
//
// Article files are JSON arrays of {id, title, section, content}. The
// persona tag is derived from the file name.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/finrag/internal/config"
	"github.com/kailas-cloud/finrag/internal/domain"
	logpkg "github.com/kailas-cloud/finrag/internal/logger"
	"github.com/kailas-cloud/finrag/internal/metrics"
	openaiTransport "github.com/kailas-cloud/finrag/internal/transport/openai"
)

type ingestConfig struct {
	dataDir string
	outPath string
	pause   time.Duration
}

// article is the raw shape of one entry in a data file.
type article struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Section string `json:"section"`
	Content string `json:"content"`
}

func main() {
	cfg := parseFlags()

	ctx, cancel := signal.NotifyContext(
		context.Background(), syscall.SIGTERM, syscall.SIGINT,
	)
	defer cancel()

	env := config.GetEnv()
	appCfg, err := config.Load(env)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	logger, err := logpkg.New(env, appCfg.Logging.Level)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to create logger:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(ctx, cfg, appCfg, logger); err != nil {
		logger.Fatal("Ingest failed", zap.Error(err))
	}
}

func parseFlags() ingestConfig {
	cfg := ingestConfig{}
	flag.StringVar(&cfg.dataDir, "data-dir", "data", "directory with article JSON files")
	flag.StringVar(&cfg.outPath, "out", "embeddings.json", "output path for the embeddings artifact")
	flag.DurationVar(&cfg.pause, "pause", 500*time.Millisecond, "pause between embedding calls")
	flag.Parse()
	return cfg
}

func run(ctx context.Context, cfg ingestConfig, appCfg config.Config, logger *zap.Logger) error {
	if appCfg.Embedding.APIKey == "" {
		return domain.ErrEmbeddingNotConfigured
	}

	metrics.RegisterEmbeddingMetrics()

	embedder := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     appCfg.Embedding.APIKey,
		BaseURL:    appCfg.Embedding.BaseURL,
		Model:      appCfg.Embedding.Model,
		Dimensions: appCfg.Embedding.Dimensions,
		Provider:   appCfg.Embedding.Provider,
		Logger:     logger,
	})

	files, err := listDataFiles(cfg.dataDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		logger.Warn("No article files found", zap.String("data_dir", cfg.dataDir))
	}

	var passages []domain.Passage
	for _, path := range files {
		chunks, err := ingestFile(ctx, embedder, path, cfg.pause, logger)
		if err != nil {
			return fmt.Errorf("ingest %s: %w", filepath.Base(path), err)
		}
		passages = append(passages, chunks...)
	}

	if err := writeArtifact(cfg.outPath, passages); err != nil {
		return err
	}

	logger.Info("Ingest complete",
		zap.Int("passages", len(passages)),
		zap.String("out", cfg.outPath),
	)
	return nil
}

func listDataFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read data dir: %w", err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

// ingestFile embeds every article in one data file. Each article is short
// enough to be a single chunk. Articles that fail to embed are skipped.
func ingestFile(
	ctx context.Context,
	embedder domain.Embedder,
	path string,
	pause time.Duration,
	logger *zap.Logger,
) ([]domain.Passage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var articles []article
	if err := json.Unmarshal(raw, &articles); err != nil {
		return nil, fmt.Errorf("parse articles: %w", err)
	}

	source := filepath.Base(path)
	persona := personaFromFilename(source)
	logger.Info("Processing data file",
		zap.String("file", source),
		zap.String("persona", persona),
		zap.Int("articles", len(articles)),
	)

	passages := make([]domain.Passage, 0, len(articles))
	for _, a := range articles {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text := a.Title + "\n" + a.Content
		result, err := embedder.Embed(ctx, text)
		if err != nil {
			logger.Warn("Failed to embed article, skipping",
				zap.String("id", a.ID),
				zap.String("title", a.Title),
				zap.Error(err),
			)
			continue
		}

		passages = append(passages, domain.Passage{
			ID:        a.ID,
			Title:     a.Title,
			Section:   a.Section,
			Source:    source,
			Persona:   persona,
			Text:      a.Content,
			Embedding: result.Embedding,
		})

		// Provider rate limit safeguard
		if pause > 0 {
			select {
			case <-time.After(pause):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	return passages, nil
}

// personaFromFilename derives the persona tag from a data file name.
// Files without a recognized persona marker produce general passages.
func personaFromFilename(name string) string {
	lower := strings.ToLower(name)
	for _, p := range []string{"naval", "ray", "buffett"} {
		if strings.Contains(lower, p) {
			return p
		}
	}
	return domain.PersonaGeneral
}

func writeArtifact(path string, passages []domain.Passage) error {
	if passages == nil {
		passages = []domain.Passage{}
	}
	data, err := json.MarshalIndent(passages, "", "  ")
	if err != nil {
		return fmt.Errorf("encode artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}
