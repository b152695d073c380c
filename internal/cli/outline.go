package cli

import (
	"context"
	"encoding/json"
	"io"

	"github.com/mvp-joe/scriptdoc/internal/config"
	"github.com/mvp-joe/scriptdoc/internal/decompile"
	"github.com/mvp-joe/scriptdoc/internal/generator"
	"github.com/mvp-joe/scriptdoc/internal/script"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var outlineJSON bool

// outlineCmd represents the outline command
var outlineCmd = &cobra.Command{
	Use:   "outline <path>",
	Short: "Print the handler and script structure of a script",
	Long: `Outline prints the tree of headings, handlers and script objects in a
script with their line numbers. Use --json for machine-readable output that
also carries privacy flags and doc comments.`,
	Args: cobra.ExactArgs(1),
	RunE: runOutline,
}

func init() {
	rootCmd.AddCommand(outlineCmd)
	outlineCmd.Flags().BoolVar(&outlineJSON, "json", false, "Print the outline as JSON")
}

func runOutline(cmd *cobra.Command, args []string) error {
	cfg, rootDir, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg, false, cmd.ErrOrStderr())
	return executeOutline(cmd.Context(), cfg, rootDir, args[0], outlineJSON, cmd.OutOrStdout(), log)
}

func executeOutline(ctx context.Context, cfg *config.Config, rootDir, path string, asJSON bool, out io.Writer, log zerolog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}

	gen := generator.New(generator.Options{RootDir: rootDir}, decompile.New(cfg.DecompileConfig()), log)
	doc, err := gen.Load(ctx, path)
	if err != nil {
		return err
	}

	nodes := doc.Outline()
	if !asJSON {
		return script.WriteOutline(out, nodes)
	}

	if nodes == nil {
		nodes = []script.OutlineNode{}
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(nodes)
}
