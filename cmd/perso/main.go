// Command perso is a single-document RAG chat CLI: it loads one document,
// embeds it into an in-memory index, and answers console questions grounded
// in the retrieved passages.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/teknokeras/perso/internal/adapters/embedding"
	"github.com/teknokeras/perso/internal/adapters/filewatcher"
	"github.com/teknokeras/perso/internal/adapters/llm"
	"github.com/teknokeras/perso/internal/adapters/loader"
	"github.com/teknokeras/perso/internal/adapters/parser"
	"github.com/teknokeras/perso/internal/adapters/vectordb"
	"github.com/teknokeras/perso/internal/config"
	"github.com/teknokeras/perso/internal/domain/ports"
	"github.com/teknokeras/perso/internal/domain/usecases"
	"github.com/teknokeras/perso/internal/infrastructure/console"
)

func main() {
	_ = godotenv.Load()

	var (
		cfgPath    = flag.String("config", "config.yaml", "path to YAML config file")
		docPath    = flag.String("pdf", "", "path to the source document (default knowledge.pdf)")
		model      = flag.String("model", "", "completion model name")
		embedModel = flag.String("embedding-model", "", "embedding model name")
		topK       = flag.Int("top-k", 0, "number of passages retrieved per question")
		dims       = flag.Int("embedding-dims", 0, "embedding dimension (providers that support truncation)")
		watch      = flag.Bool("watch", false, "reindex when the source document changes")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
	applyFlags(cfg, *docPath, *model, *embedModel, *topK, *dims)

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}

	if err := run(context.Background(), cfg, *watch); err != nil {
		log.Fatalf("[ERROR] %v", err)
	}
}

// applyFlags lets command-line flags override config file values.
func applyFlags(cfg *config.Config, docPath, model, embedModel string, topK, dims int) {
	if docPath != "" {
		cfg.DocumentPath = docPath
	}
	if model != "" {
		cfg.Ollama.CompletionModel = model
		cfg.OpenAI.CompletionModel = model
	}
	if embedModel != "" {
		cfg.Ollama.EmbeddingModel = embedModel
		cfg.OpenAI.EmbeddingModel = embedModel
	}
	if topK > 0 {
		cfg.Chat.TopK = topK
	}
	if dims > 0 {
		cfg.Chat.EmbeddingDims = dims
	}
}

// run builds the index and drives the chat session. Any failure before the
// session starts is fatal: there is no corpus to answer from without it.
func run(ctx context.Context, cfg *config.Config, watch bool) error {
	embedder, completer, err := buildProviders(cfg)
	if err != nil {
		return err
	}

	docLoader := loader.NewMultiLoader(parser.NewPDFExtractor(cfg.ExtractorURL))
	store := vectordb.NewInMemoryStore()
	ingest := usecases.NewIngestUseCase(embedder, store, cfg.Chunker.Size, cfg.Chunker.Overlap)
	query := usecases.NewQueryUseCase(embedder, store, completer, cfg.Chat.Preamble, cfg.Chat.TopK)

	fmt.Printf("📖 Reading %s...\n", cfg.DocumentPath)
	doc, err := docLoader.Load(ctx, cfg.DocumentPath)
	if err != nil {
		return err
	}

	fmt.Println("🔨 Creating embeddings...")
	if err := ingest.Ingest(ctx, doc); err != nil {
		return err
	}
	n, _ := store.Count(ctx)
	fmt.Printf("🔨 Indexed %d passages from %s\n", n, doc.Name)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if watch {
		if err := watchAndReindex(ctx, cfg.DocumentPath, docLoader, ingest); err != nil {
			return fmt.Errorf("starting watcher: %w", err)
		}
	}

	session := console.NewSession(
		query,
		os.Stdin, os.Stdout, os.Stderr,
		time.Duration(cfg.Chat.TimeoutSecs)*time.Second,
	)
	return session.Run(ctx)
}

// buildProviders constructs the embedding and completion adapters for the
// configured provider. Ollama needs no credential; OpenAI-compatible
// endpoints read theirs from the environment.
func buildProviders(cfg *config.Config) (ports.EmbeddingService, ports.CompletionService, error) {
	switch cfg.Provider {
	case "ollama":
		embedder := embedding.NewOllamaAdapter(cfg.Ollama.BaseURL, cfg.Ollama.EmbeddingModel, cfg.Ollama.EmbedConcurrency)
		completer := llm.NewOllamaAdapter(cfg.Ollama.BaseURL, cfg.Ollama.CompletionModel)
		return embedder, completer, nil
	case "openai":
		embedder, err := embedding.NewOpenAIAdapter(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey(), cfg.OpenAI.EmbeddingModel, cfg.Chat.EmbeddingDims)
		if err != nil {
			return nil, nil, err
		}
		completer, err := llm.NewOpenAIAdapter(cfg.OpenAI.BaseURL, cfg.OpenAI.APIKey(), cfg.OpenAI.CompletionModel)
		if err != nil {
			return nil, nil, err
		}
		return embedder, completer, nil
	default:
		return nil, nil, fmt.Errorf("unknown provider %q", cfg.Provider)
	}
}

// watchAndReindex rebuilds the index whenever the source document changes.
// Reindex failures are reported and the session keeps the previous index.
func watchAndReindex(ctx context.Context, path string, docLoader ports.DocumentLoader, ingest *usecases.IngestUseCase) error {
	watcher, err := filewatcher.NewFSNotifyWatcher()
	if err != nil {
		return err
	}

	events, err := watcher.Watch(ctx, path)
	if err != nil {
		watcher.Stop()
		return err
	}
	fmt.Printf("👀 Watching %s for changes\n", path)

	go func() {
		defer watcher.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-events:
				if !ok {
					return
				}
				if event.Operation == ports.FileDeleted {
					log.Printf("[WARN] %s was removed; keeping the current index", path)
					continue
				}
				doc, err := docLoader.Load(ctx, path)
				if err != nil {
					log.Printf("[ERROR] reloading %s: %v", path, err)
					continue
				}
				if err := ingest.Reingest(ctx, doc); err != nil {
					log.Printf("[ERROR] reindexing %s: %v", path, err)
					continue
				}
				log.Printf("[OK] reindexed %s", path)
			}
		}
	}()

	return nil
}
