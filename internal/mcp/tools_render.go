package mcp

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/scriptdoc/internal/decompile"
	"github.com/mvp-joe/scriptdoc/internal/generator"
	"github.com/mvp-joe/scriptdoc/internal/render"
	"github.com/mvp-joe/scriptdoc/internal/script"
)

// DefaultSourceTitle titles documents rendered from inline source.
const DefaultSourceTitle = "Script"

// errOutsideRoot rejects paths that escape the project root.
var errOutsideRoot = errors.New("path is outside project root")

// AddRenderTool registers the scriptdoc_render tool with an MCP server.
func AddRenderTool(s *server.MCPServer, gen *generator.Generator, cache *renderCache) {
	tool := mcp.NewTool(
		"scriptdoc_render",
		mcp.WithDescription("Render the markdown documentation page for a script: contents, overview and one section per documented handler, heading and script object."),
		mcp.WithString("path",
			mcp.Description("Script file relative to the project root (.applescript text or compiled .scpt)")),
		mcp.WithString("source",
			mcp.Description("Script source text, used instead of path")),
		mcp.WithString("title",
			mcp.Description("Page title (default: file name without extension, or \"Script\" for source)")),
		mcp.WithString("url_prefix",
			mcp.Description("Link prefix for handler and script headings; the line number is appended and {path} is replaced by the file path")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createRenderHandler(gen, cache))
}

// createRenderHandler creates the handler function for the scriptdoc_render tool.
func createRenderHandler(gen *generator.Generator, cache *renderCache) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, errResult := parseToolArguments(request)
		if errResult != nil {
			return errResult, nil
		}

		args, err := parseScriptArgs(argsMap)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		if args.Path == "" {
			title := args.Title
			if title == "" {
				title = DefaultSourceTitle
			}
			key := cacheKey(title, args.URLPrefix, args.Source)
			if markdown, ok := cache.get(key); ok {
				return mcp.NewToolResultText(markdown), nil
			}
			doc := script.Parse(decompile.Canonicalize(args.Source))
			markdown := render.Render(doc, render.Options{Title: title, URLPrefix: args.URLPrefix})
			cache.set(key, markdown)
			return mcp.NewToolResultText(markdown), nil
		}

		path, rel, err := resolvePath(gen.RootDir(), args.Path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		doc, err := gen.Load(ctx, path)
		if err != nil {
			if isUserError(err) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return nil, err
		}

		opts := gen.RenderOptions(path)
		if args.Title != "" {
			opts.Title = args.Title
		}
		if args.URLPrefix != "" {
			opts.URLPrefix = strings.ReplaceAll(args.URLPrefix, generator.PathPlaceholder, rel)
		}

		return mcp.NewToolResultText(render.Render(doc, opts)), nil
	}
}

// resolvePath anchors a relative path at root and rejects paths outside it.
// It returns the path to read and its slash-separated form relative to root.
func resolvePath(root, path string) (string, string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", "", err
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(absRoot, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(absRoot, path)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", errOutsideRoot, path)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", "", fmt.Errorf("%w: %s", errOutsideRoot, path)
	}
	return path, rel, nil
}

// isUserError determines if an error should be shown to the client rather
// than treated as an internal failure.
func isUserError(err error) bool {
	return errors.Is(err, decompile.ErrInputNotFound) ||
		errors.Is(err, decompile.ErrInputUnreadable) ||
		errors.Is(err, decompile.ErrDecompileFailed) ||
		errors.Is(err, decompile.ErrCompileFailed) ||
		errors.Is(err, decompile.ErrDecompileTimeout) ||
		errors.Is(err, errOutsideRoot)
}
