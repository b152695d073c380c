package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/mvp-joe/scriptdoc/internal/decompile"
	"github.com/mvp-joe/scriptdoc/internal/generator"
	"github.com/mvp-joe/scriptdoc/internal/script"
)

// AddOutlineTool registers the scriptdoc_outline tool with an MCP server.
//
// The outline is the tree of handlers, headings and script objects with
// their line numbers and doc comments, without rendering a page.
func AddOutlineTool(s *server.MCPServer, gen *generator.Generator) {
	tool := mcp.NewTool(
		"scriptdoc_outline",
		mcp.WithDescription("List the handlers, headings and script objects of a script as a tree with line numbers, privacy and doc comments."),
		mcp.WithString("path",
			mcp.Description("Script file relative to the project root")),
		mcp.WithString("source",
			mcp.Description("Script source text, used instead of path")),
		mcp.WithString("format",
			mcp.Description("Output format: json (default) or text")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createOutlineHandler(gen))
}

// createOutlineHandler creates the handler function for the scriptdoc_outline tool.
func createOutlineHandler(gen *generator.Generator) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, errResult := parseToolArguments(request)
		if errResult != nil {
			return errResult, nil
		}

		args, err := parseScriptArgs(argsMap)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}

		format, err := parseStringArg(argsMap, "format", false)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("Invalid arguments: %v", err)), nil
		}
		if format == "" {
			format = "json"
		}
		if format != "json" && format != "text" {
			return mcp.NewToolResultError(fmt.Sprintf("invalid format %q (valid: json, text)", format)), nil
		}

		var doc *script.Document
		if args.Path == "" {
			doc = script.Parse(decompile.Canonicalize(args.Source))
		} else {
			path, _, err := resolvePath(gen.RootDir(), args.Path)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			if doc, err = gen.Load(ctx, path); err != nil {
				if isUserError(err) {
					return mcp.NewToolResultError(err.Error()), nil
				}
				return nil, err
			}
		}

		nodes := doc.Outline()
		if format == "text" {
			var b strings.Builder
			if err := script.WriteOutline(&b, nodes); err != nil {
				return nil, err
			}
			return mcp.NewToolResultText(b.String()), nil
		}

		if nodes == nil {
			nodes = []script.OutlineNode{}
		}
		return marshalToolResponse(nodes)
	}
}

// marshalToolResponse marshals a response object to JSON and returns it as an MCP tool result.
func marshalToolResponse(response interface{}) (*mcp.CallToolResult, error) {
	jsonData, err := json.Marshal(response)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}
	return mcp.NewToolResultText(string(jsonData)), nil
}
