package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/forgemcp/mcpcore"
	"github.com/forgemcp/mcpcore/internal/config"
	"github.com/spf13/cobra"
)

var serveLogLevel string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run as an MCP server over stdio",
	Long: `Run mcpcored as an MCP server speaking JSON-RPC 2.0 over stdio.

This mode is intended to be spawned by Claude Code or another MCP-speaking
host, which talks to mcpcored over its stdin/stdout:

  {
    "mcpServers": {
      "mcpcored": {
        "command": "mcpcored",
        "args": ["serve"]
      }
    }
  }`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveLogLevel, "log-level", "l", "info", "Log level (debug, info, warn, error)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// In stdio mode all non-protocol output must go to stderr.
	switch serveLogLevel {
	case "debug":
		log.SetOutput(os.Stderr)
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	case "info", "warn", "error":
		log.SetOutput(os.Stderr)
		log.SetFlags(log.LstdFlags)
	default:
		log.SetOutput(io.Discard)
	}

	log.Printf("mcpcored serve starting (version=%s)", version)

	resolvedConfigPath, err := resolveConfigPath()
	if err != nil {
		return err
	}

	cfg, err := config.LoadFrom(resolvedConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	log.Printf("loaded config, serverInfo=%s/%s", cfg.ServerInfo.Name, cfg.ServerInfo.Version)

	srv := mcpcore.New(
		mcpcore.WithConfig(cfg),
		mcpcore.WithOnInitialize(func(ctx context.Context, clientInfo json.RawMessage, fr *mcpcore.Frame) {
			log.Printf("session %s initialized, client=%s", fr.SessionID(), string(clientInfo))
		}),
	)

	if err := registerDemoComponents(srv); err != nil {
		return fmt.Errorf("failed to register demo components: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("received signal %v, shutting down", sig)
		cancel()
	}()

	go func() {
		if err := srv.WatchConfigFile(ctx, resolvedConfigPath); err != nil && err != context.Canceled {
			log.Printf("config watch stopped: %v", err)
		}
	}()

	if err := srv.ServeStdio(ctx, os.Stdin, os.Stdout); err != nil && err != context.Canceled {
		return fmt.Errorf("server error: %w", err)
	}

	log.Println("mcpcored serve exiting")
	return nil
}

func resolveConfigPath() (string, error) {
	if configPath == "" {
		return config.ConfigPath()
	}
	if strings.HasPrefix(configPath, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home dir: %w", err)
		}
		return filepath.Join(home, configPath[2:]), nil
	}
	return configPath, nil
}

// registerDemoComponents wires a small set of example tools/prompts/
// resources so a freshly-initialized server has something to call.
func registerDemoComponents(srv *mcpcore.Server) error {
	err := srv.RegisterTool(mcpcore.Tool{
		Name:        "echo",
		Description: "Echoes the given text back to the caller",
		InputSchema: json.RawMessage(`{"type":"object","properties":{"text":{"type":"string"}},"required":["text"]}`),
		Handler: func(ctx context.Context, args json.RawMessage, fr mcpcore.FrameContext) (mcpcore.ToolResponse, error) {
			var in struct {
				Text string `json:"text"`
			}
			if err := json.Unmarshal(args, &in); err != nil {
				return mcpcore.ToolResponse{}, err
			}
			return mcpcore.NewToolResponse().Text(in.Text).Build(), nil
		},
	})
	if err != nil {
		return err
	}

	err = srv.RegisterPrompt(mcpcore.Prompt{
		Name:        "greeting",
		Description: "Produces a short greeting prompt",
		Handler: func(ctx context.Context, args json.RawMessage, fr mcpcore.FrameContext) (mcpcore.PromptResponse, error) {
			return mcpcore.NewPromptResponse().
				Message("user", mcpcore.TextContent("Say hello to the user in one sentence.")).
				Build(), nil
		},
	})
	if err != nil {
		return err
	}

	return srv.RegisterResource(mcpcore.Resource{
		URI:         "mcpcored://status",
		Name:        "status",
		Description: "Static status document",
		MimeType:    "text/plain",
		Handler: func(ctx context.Context, uri string, fr mcpcore.FrameContext) (mcpcore.ResourceContent, error) {
			return mcpcore.ResourceContent{Text: "mcpcored is running"}, nil
		},
	})
}
