package cli

import (
	"context"
	"fmt"

	"github.com/mvp-joe/scriptdoc/internal/decompile"
	"github.com/mvp-joe/scriptdoc/internal/generator"
	"github.com/mvp-joe/scriptdoc/internal/mcp"
	"github.com/spf13/cobra"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server for script documentation",
	Long: `Start the Model Context Protocol (MCP) server so coding assistants can
render and outline scripts in the current project.

The MCP server:
- Provides the scriptdoc_render tool (markdown page for a file or inline source)
- Provides the scriptdoc_outline tool (handler and script tree)
- Communicates via stdio (standard MCP transport)

Example:
  scriptdoc mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, rootDir, err := loadConfig()
	if err != nil {
		return err
	}

	// stdout carries the protocol, so logs go to stderr only
	log := newLogger(cfg, false, cmd.ErrOrStderr())

	gen := generator.New(generator.Options{
		RootDir:   rootDir,
		Extension: cfg.Output.Extension,
		URLPrefix: cfg.Render.URLPrefix,
	}, decompile.New(cfg.DecompileConfig()), log)

	mcpConfig := mcp.DefaultMCPServerConfig()
	mcpConfig.Version = Version

	server, err := mcp.NewMCPServer(gen, mcpConfig, log)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	// Serve (blocks until shutdown)
	if err := server.Serve(ctx); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}

	return nil
}
