// Package mcp exposes scriptdoc rendering to MCP clients over stdio.
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/scriptdoc/internal/generator"
	"github.com/mvp-joe/scriptdoc/internal/logging"
	"github.com/rs/zerolog"
)

const (
	// DefaultCacheSize bounds the number of cached inline renders.
	DefaultCacheSize = 256

	// DefaultCacheTTL expires cached inline renders.
	DefaultCacheTTL = 10 * time.Minute
)

// MCPServerConfig configures the MCP server.
type MCPServerConfig struct {
	Name      string
	Version   string
	CacheSize int
	CacheTTL  time.Duration
}

// DefaultMCPServerConfig returns the default server configuration.
func DefaultMCPServerConfig() *MCPServerConfig {
	return &MCPServerConfig{
		Name:      "scriptdoc",
		Version:   "dev",
		CacheSize: DefaultCacheSize,
		CacheTTL:  DefaultCacheTTL,
	}
}

// MCPServer manages the MCP server lifecycle.
type MCPServer struct {
	config *MCPServerConfig
	cache  *renderCache
	mcp    *server.MCPServer
	log    zerolog.Logger
}

// NewMCPServer creates a server that renders through gen.
func NewMCPServer(gen *generator.Generator, config *MCPServerConfig, log zerolog.Logger) (*MCPServer, error) {
	if config == nil {
		config = DefaultMCPServerConfig()
	}
	if gen == nil {
		return nil, fmt.Errorf("generator is required")
	}

	cache, err := newRenderCache(config.CacheSize, config.CacheTTL)
	if err != nil {
		return nil, err
	}

	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	AddRenderTool(mcpServer, gen, cache)
	AddOutlineTool(mcpServer, gen)

	return &MCPServer{
		config: config,
		cache:  cache,
		mcp:    mcpServer,
		log:    logging.Component(log, "mcp"),
	}, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *MCPServer) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("version", s.config.Version).Msg("starting MCP server on stdio")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("MCP server error: %w", err)
			return
		}
		errCh <- nil
	}()

	select {
	case <-sigCh:
		s.log.Info().Msg("received shutdown signal, stopping")
		return nil
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the render cache.
func (s *MCPServer) Close() error {
	if s.cache != nil {
		s.log.Debug().Int64("cache_hits", s.cache.hits()).Msg("closing render cache")
		s.cache.close()
	}
	return nil
}
