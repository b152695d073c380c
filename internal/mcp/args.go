package mcp

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

// parseToolArguments validates and extracts the arguments map from an MCP tool request.
// Returns the arguments map or an error result if validation fails.
func parseToolArguments(request mcp.CallToolRequest) (map[string]interface{}, *mcp.CallToolResult) {
	argsMap, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, mcp.NewToolResultError("invalid arguments format")
	}
	return argsMap, nil
}

// parseStringArg extracts a string argument from an MCP arguments map.
// Returns an error if the argument is required but missing or invalid.
func parseStringArg(argsMap map[string]interface{}, key string, required bool) (string, error) {
	val, ok := argsMap[key]
	if !ok {
		if required {
			return "", fmt.Errorf("%s parameter is required", key)
		}
		return "", nil
	}

	str, ok := val.(string)
	if !ok {
		return "", fmt.Errorf("%s must be a string", key)
	}

	if required && str == "" {
		return "", fmt.Errorf("%s cannot be empty", key)
	}

	return str, nil
}

// scriptArgs are the input arguments shared by every scriptdoc tool.
type scriptArgs struct {
	Path      string
	Source    string
	Title     string
	URLPrefix string
}

// parseScriptArgs reads path/source and the optional rendering overrides.
// Exactly one of path and source must be given.
func parseScriptArgs(argsMap map[string]interface{}) (scriptArgs, error) {
	var args scriptArgs
	var err error

	if args.Path, err = parseStringArg(argsMap, "path", false); err != nil {
		return args, err
	}
	if args.Source, err = parseStringArg(argsMap, "source", false); err != nil {
		return args, err
	}
	if args.Title, err = parseStringArg(argsMap, "title", false); err != nil {
		return args, err
	}
	if args.URLPrefix, err = parseStringArg(argsMap, "url_prefix", false); err != nil {
		return args, err
	}

	_, hasSource := argsMap["source"]
	switch {
	case args.Path != "" && hasSource:
		return args, fmt.Errorf("path and source are mutually exclusive")
	case args.Path == "" && !hasSource:
		return args, fmt.Errorf("path or source parameter is required")
	}

	return args, nil
}
