package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerResources() {
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "wellkept://today",
		Name:        "Today's Habits",
		Description: "Active habits with today's completion status and streaks",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "wellkept://account",
		Name:        "Account Summary",
		Description: "Points, level and unlocked reward count",
		MIMEType:    "application/json",
	}, s.handleAccountResource)
}

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	stats, err := s.svc.ListHabitStats(ctx, s.owner)
	if err != nil {
		return nil, fmt.Errorf("failed to list habits: %w", err)
	}
	return jsonResource(req, map[string]any{"today": s.svc.Today(), "habits": stats})
}

func (s *Server) handleAccountResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	sum, err := s.svc.GetAccountSummary(ctx, s.owner)
	if err != nil {
		return nil, fmt.Errorf("failed to load account: %w", err)
	}
	return jsonResource(req, sum)
}

func jsonResource(req *mcp.ReadResourceRequest, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal resource: %w", err)
	}
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
