package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ayamoughit/Tp4testMoughit/internal/config"
	"github.com/ayamoughit/Tp4testMoughit/internal/document"
	"github.com/ayamoughit/Tp4testMoughit/internal/logging"
	"github.com/ayamoughit/Tp4testMoughit/internal/telemetry"
)

var (
	// routerMode selects how queries are routed: "static" always queries
	// every source, "model" lets the chat model classify.
	routerMode string
	// docsDir overrides the configured documents directory.
	docsDir string
	// enableWeb wires the web search route in.
	enableWeb bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive chat session",
	Long: `Start an interactive chat session. Documents from the configured
directory are indexed at startup; each question is answered using the most
relevant indexed segments as evidence.

Examples:
  # Chat over a directory of notes
  ragchat chat --docs ./notes

  # Let the model pick between documents and live web search
  ragchat chat --docs ./notes --web --router model

Type 'exit' to end the session.`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&routerMode, "router", "static", "query routing: static or model")
	chatCmd.Flags().StringVar(&docsDir, "docs", "", "directory of .txt/.md documents to index")
	chatCmd.Flags().BoolVar(&enableWeb, "web", false, "enable the live web search route")
}

func runChat(cmd *cobra.Command, args []string) error {
	if routerMode != "static" && routerMode != "model" {
		return fmt.Errorf("--router must be 'static' or 'model', got %q", routerMode)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if docsDir != "" {
		cfg.Documents.Dir = docsDir
	}
	if enableWeb {
		cfg.Websearch.Enabled = true
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := shutdownTelemetry(context.Background()); err != nil {
			logger.Warn("telemetry shutdown failed", zap.Error(err))
		}
	}()

	session, err := buildSession(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() { _ = session.assistant.Close() }()

	indexed := 0
	if cfg.Documents.Dir != "" {
		src := document.NewDirSource(cfg.Documents.Dir, logger)
		indexed, err = session.pipeline.IngestSource(ctx, src)
		if err != nil {
			return fmt.Errorf("indexing %s: %w", cfg.Documents.Dir, err)
		}
	}

	fmt.Printf("ragchat ready — %d segment(s) indexed. Type 'exit' to quit.\n", indexed)
	return chatLoop(ctx, session, logger)
}

// chatLoop reads questions line by line until EOF, interrupt, or a literal
// "exit" (case-insensitive). A failed turn is reported and the session
// continues.
func chatLoop(ctx context.Context, session *session, logger *zap.Logger) error {
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("You: ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "exit") {
			break
		}

		reply, err := session.assistant.Chat(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn("turn failed", zap.Error(err))
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println("Assistant: " + reply)
	}
	return scanner.Err()
}
