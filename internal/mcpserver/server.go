// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the documentation site for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/checkstyle/eclipse-cs/internal/apperr"
	"github.com/checkstyle/eclipse-cs/internal/routes"
	"github.com/checkstyle/eclipse-cs/internal/siteservice"
)

const (
	routesURI = "ecsdoc://routes"
	guideURI  = "ecsdoc://fragment-guide"
)

// Server wraps the MCP server with the site tools.
type Server struct {
	mcp *server.MCPServer
	svc *siteservice.Service
}

// New creates a new MCP server with all site tools registered.
func New(svc *siteservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"eclipse-cs",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("resolve_fragment",
		mcp.WithDescription("Resolve a documentation fragment (e.g. /faq, /releasenotes) into the "+
			"complete HTML document served to crawlers."),
		mcp.WithString("fragment", mcp.Required(), mcp.Description("Fragment path, e.g. /install")),
	), s.resolveFragment)

	s.mcp.AddTool(mcp.NewTool("list_routes",
		mcp.WithDescription("List the browser navigator's fragment to template routes."),
	), s.listRoutes)

	s.mcp.AddTool(mcp.NewTool("list_releases",
		mcp.WithDescription("List released versions, newest first, with their notes template and expansion state."),
		mcp.WithBoolean("expand_all", mcp.Description("Expand every entry")),
		mcp.WithString("toggle", mcp.Description("Label of one entry whose expansion to flip")),
	), s.listReleases)

	s.mcp.AddTool(mcp.NewTool("search_templates",
		mcp.WithDescription("Full-text search through documentation pages."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results")),
	), s.searchTemplates)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all pages that link to the specified fragment."),
		mcp.WithString("fragment", mcp.Required(), mcp.Description("Fragment to find backlinks for")),
	), s.getBacklinks)

	s.mcp.AddResource(
		mcp.NewResource(routesURI, "Route Table",
			mcp.WithResourceDescription("Fragment to template routes used by the browser navigator."),
			mcp.WithMIMEType("application/json"),
		),
		s.readRoutesResource,
	)

	s.mcp.AddResource(
		mcp.NewResource(guideURI, "Fragment Guide",
			mcp.WithResourceDescription("How fragments address documentation pages."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readGuideResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) resolveFragment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fragment, err := req.RequireString("fragment")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	body, err := s.svc.RenderCrawler(ctx, fragment)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", fragment)), nil
		case errors.Is(err, apperr.ErrSourceUnavailable):
			return mcp.NewToolResultError("release data unavailable"), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(body)), nil
}

type routeList struct {
	Routes  []routes.Rule `json:"routes"`
	Default string        `json:"default"`
}

func (s *Server) routesJSON() string {
	rules, def := s.svc.Routes()
	out, _ := json.MarshalIndent(routeList{Routes: rules, Default: def}, "", "  ")
	return string(out)
}

func (s *Server) listRoutes(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(s.routesJSON()), nil
}

func (s *Server) listReleases(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var toggle []string
	if label := req.GetString("toggle", ""); label != "" {
		toggle = append(toggle, label)
	}
	entries, err := s.svc.Releases(ctx, req.GetBool("expand_all", false), toggle...)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) searchTemplates(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hits, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, _ := json.MarshalIndent(hits, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fragment, err := req.RequireString("fragment")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl, err := s.svc.Backlinks(ctx, fragment)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(bl, "\n")), nil
}

func (s *Server) readRoutesResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      routesURI,
			MIMEType: "application/json",
			Text:     s.routesJSON(),
		},
	}, nil
}

func (s *Server) readGuideResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      guideURI,
			MIMEType: "text/markdown",
			Text:     FragmentGuide,
		},
	}, nil
}
