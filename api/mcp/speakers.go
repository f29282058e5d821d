package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

var (
	listToolName    = "list_speakers"
	listDescription = "List the speakers currently enrolled for voice verification. Returns speaker IDs and names, without embeddings."
)

// ListSpeakersInput represents the input arguments for the list_speakers tool.
type ListSpeakersInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of speakers to return (default: 100)"`
}

// SpeakerInfo is a single enrolled speaker.
type SpeakerInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ListSpeakersOutput represents the output of the list_speakers tool.
type ListSpeakersOutput struct {
	Speakers []SpeakerInfo `json:"speakers"`
	Count    int           `json:"count"`
}

// handleListSpeakers processes a speaker listing request.
func (s *Server) handleListSpeakers(ctx context.Context, req *mcp.CallToolRequest, input ListSpeakersInput) (*mcp.CallToolResult, ListSpeakersOutput, error) {
	logger := s.config.Logger

	limit := input.Limit
	if limit <= 0 {
		limit = 100
	}

	logger.Debug("MCP list_speakers request", zap.Int("limit", limit))

	speakers, err := s.config.Verifier.Speakers(ctx, limit)
	if err != nil {
		logger.Error("failed to list speakers", zap.Error(err))
		return toolError(fmt.Sprintf("Failed to list speakers: %v", err)), ListSpeakersOutput{}, nil
	}

	infos := make([]SpeakerInfo, 0, len(speakers))
	for _, sp := range speakers {
		infos = append(infos, SpeakerInfo{ID: sp.ID, Name: sp.Name})
	}

	output := ListSpeakersOutput{
		Speakers: infos,
		Count:    len(infos),
	}

	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal speaker list", zap.Error(err))
		return toolError(fmt.Sprintf("Failed to serialize result: %v", err)), ListSpeakersOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}
