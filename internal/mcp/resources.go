package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/usestring/gqlquery-mcp/internal/mcp/tools"
	"github.com/usestring/gqlquery-mcp/internal/store"
)

// Resource URI scheme: gqlquery://
// Supported URIs:
//   gqlquery://definition/{name}
//   gqlquery://session/{session_id}
//   gqlquery://schema/definition

const uriScheme = "gqlquery://"

// registerResources registers resource templates and handlers.
func (s *Server) registerResources() {
	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: "gqlquery://definition/{name}",
		Name:        "Query Definition",
		Description: "A stored query definition: raw GraphQL query and ordered extraction rules.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.7,
		},
	}, s.handleResourceDefinition)

	s.mcpServer.AddResourceTemplate(&sdkmcp.ResourceTemplate{
		URITemplate: "gqlquery://session/{session_id}",
		Name:        "Editor Session",
		Description: "Editor state of an open session. gql_editor_state returns the same view with hints.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.4,
		},
	}, s.handleResourceSession)

	s.mcpServer.AddResource(&sdkmcp.Resource{
		URI:         "gqlquery://schema/definition",
		Name:        "Definition Schema",
		Description: "JSON Schema stored definition documents are validated against.",
		MIMEType:    tools.MimeJSON,
		Annotations: &sdkmcp.Annotations{
			Audience: []sdkmcp.Role{"assistant"},
			Priority: 0.2,
		},
	}, s.handleResourceSchema)
}

// Resource handlers

func (s *Server) handleResourceDefinition(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	def, err := s.deps.Store.Load(params["name"])
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, tools.WrapStoreError(params["name"], err)
	}

	content := map[string]any{
		"name":       params["name"],
		"definition": def,
	}
	return toResourceResult(req.Params.URI, content)
}

func (s *Server) handleResourceSession(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	params, err := parseResourceURI(req.Params.URI)
	if err != nil {
		return nil, err
	}

	sess, err := s.deps.Sessions.Get(params["session_id"])
	if err != nil {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}
	view, err := sess.View()
	if err != nil {
		return nil, sdkmcp.ResourceNotFoundError(req.Params.URI)
	}
	return toResourceResult(req.Params.URI, view)
}

func (s *Server) handleResourceSchema(ctx context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
	return toResourceResult(req.Params.URI, store.DefinitionSchema())
}

// Helper functions

// parseResourceURI extracts parameters from a gqlquery:// URI.
func parseResourceURI(uri string) (map[string]string, error) {
	if !strings.HasPrefix(uri, uriScheme) {
		return nil, tools.ErrInvalidInput("invalid URI scheme: expected " + uriScheme)
	}

	parts := strings.Split(strings.TrimPrefix(uri, uriScheme), "/")
	if len(parts) == 0 || parts[0] == "" {
		return nil, tools.ErrInvalidInput("empty resource path")
	}

	params := make(map[string]string)
	switch resourceType := parts[0]; resourceType {
	case "definition":
		if len(parts) != 2 || parts[1] == "" {
			return nil, tools.ErrInvalidInput("definition URI requires a name")
		}
		params["name"] = parts[1]

	case "session":
		if len(parts) != 2 || parts[1] == "" {
			return nil, tools.ErrInvalidInput("session URI requires a session ID")
		}
		params["session_id"] = parts[1]

	default:
		return nil, tools.ErrInvalidInput(fmt.Sprintf("unknown resource type: %s", resourceType))
	}

	return params, nil
}

// toResourceResult serializes content to a ReadResourceResult.
func toResourceResult(uri string, content any) (*sdkmcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(content, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing resource: %w", err)
	}

	return &sdkmcp.ReadResourceResult{
		Contents: []*sdkmcp.ResourceContents{
			{
				URI:      uri,
				MIMEType: tools.MimeJSON,
				Text:     string(data),
			},
		},
	}, nil
}
