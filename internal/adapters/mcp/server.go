// Package mcp exposes the analysis pipeline as MCP tools over stdio,
// so agent hosts can drive extraction and generation directly. All
// tool calls run under one configured service identity.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/vlasenko/incident-analyst/internal/core/auth"
	"github.com/vlasenko/incident-analyst/internal/core/domain"
	"github.com/vlasenko/incident-analyst/internal/core/ports"
)

// Deps holds the pipeline services the tools dispatch to.
type Deps struct {
	Extraction ports.FieldExtractionService
	Generation ports.AnalysisService
	History    ports.HistoryService

	// ServiceUserID is the identity every tool call runs under.
	ServiceUserID string
}

func (d Deps) authContext() auth.Context {
	if d.ServiceUserID == "" {
		return auth.Anonymous()
	}
	return auth.Authenticated(domain.User{ID: d.ServiceUserID})
}

// NewServer creates an MCP server with the incident tools registered.
func NewServer(deps Deps) *server.MCPServer {
	s := server.NewMCPServer(
		"incident-analyst",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions("incident-analyst extracts structured fields from workplace-incident report text and generates legal analyses."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("extract_incident_fields",
			mcp.WithDescription("Extract the five structured incident fields (date, location, cause, type, cited violations) from raw report text."),
			mcp.WithString("pdfText", mcp.Description("Plain text of the incident report"), mcp.Required()),
		),
		extractIncidentFields(deps),
	)

	s.AddTool(
		mcp.NewTool("generate_incident_analysis",
			mcp.WithDescription("Generate and persist a legal analysis for an incident. Returns the summary, the analysis narrative and the record id."),
			mcp.WithString("dateOfInjury", mcp.Description("Date of the injury"), mcp.Required()),
			mcp.WithString("locationOfIncident", mcp.Description("Location of the incident"), mcp.Required()),
			mcp.WithString("causeOfIncident", mcp.Description("Cause of the incident"), mcp.Required()),
			mcp.WithString("typeOfIncident", mcp.Description("Type of the incident"), mcp.Required()),
			mcp.WithArray("statutoryViolationsCited", mcp.Description("Cited statutory violations"), mcp.Required()),
			mcp.WithString("pdfText", mcp.Description("Plain text of the incident report"), mcp.Required()),
		),
		generateIncidentAnalysis(deps),
	)

	s.AddTool(
		mcp.NewTool("list_incident_history",
			mcp.WithDescription("List the service identity's most recent saved analyses, newest first."),
		),
		listIncidentHistory(deps),
	)

	return s
}

func extractIncidentFields(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		pdfText, err := req.RequireString("pdfText")
		if err != nil {
			return mcpError("pdfText is required"), nil
		}

		fields, err := deps.Extraction.Extract(ctx, deps.authContext(), pdfText)
		if err != nil {
			return mcpError(fmt.Sprintf("extraction failed: %v", err)), nil
		}
		return mcpJSON(fields)
	}
}

func generateIncidentAnalysis(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		fields := domain.IncidentFields{}
		for name, target := range map[string]*string{
			"dateOfInjury":       &fields.DateOfInjury,
			"locationOfIncident": &fields.LocationOfIncident,
			"causeOfIncident":    &fields.CauseOfIncident,
			"typeOfIncident":     &fields.TypeOfIncident,
		} {
			value, err := req.RequireString(name)
			if err != nil {
				return mcpError(name + " is required"), nil
			}
			*target = value
		}
		fields.StatutoryViolationsCited = req.GetStringSlice("statutoryViolationsCited", nil)

		pdfText, err := req.RequireString("pdfText")
		if err != nil {
			return mcpError("pdfText is required"), nil
		}

		result, err := deps.Generation.Generate(ctx, deps.authContext(), fields, pdfText)
		if err != nil {
			return mcpError(fmt.Sprintf("generation failed: %v", err)), nil
		}
		return mcpJSON(result)
	}
}

func listIncidentHistory(deps Deps) server.ToolHandlerFunc {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		records, err := deps.History.List(ctx, deps.authContext())
		if err != nil {
			return mcpError(fmt.Sprintf("history lookup failed: %v", err)), nil
		}
		if len(records) == 0 {
			return mcpText("[]"), nil
		}
		return mcpJSON(records)
	}
}

func mcpJSON(payload any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return mcpError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcpText(string(b)), nil
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
