package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/voxgateco/voxgate/pkg/audio"
	"github.com/voxgateco/voxgate/pkg/verifier"
)

var (
	verifyToolName    = "verify_speaker"
	verifyDescription = "Verify a claimed speaker identity against the enrolled voices. Takes a claimed name and a base64-encoded WAV voice sample, and reports whether the nearest enrolled voice belongs to the claimed speaker."
)

// VerifySpeakerInput represents the input arguments for the verify_speaker tool.
type VerifySpeakerInput struct {
	Name  string `json:"name" jsonschema:"the claimed speaker name"`
	Audio []byte `json:"audio" jsonschema:"base64-encoded WAV voice sample"`
}

// VerifySpeakerOutput represents the output of the verify_speaker tool.
type VerifySpeakerOutput struct {
	ClaimedName string  `json:"claimed_name"`
	MatchedName string  `json:"matched_name"`
	Score       float32 `json:"score"`
	Threshold   float32 `json:"threshold"`
	Verified    bool    `json:"verified"`
	Message     string  `json:"message"`
}

// handleVerifySpeaker processes a verification request.
func (s *Server) handleVerifySpeaker(ctx context.Context, req *mcp.CallToolRequest, input VerifySpeakerInput) (*mcp.CallToolResult, VerifySpeakerOutput, error) {
	logger := s.config.Logger

	logger.Debug("MCP verify_speaker request",
		zap.String("claimed_name", input.Name),
		zap.Int("audio_bytes", len(input.Audio)),
	)

	clip, err := audio.Decode(input.Audio)
	if err != nil {
		logger.Error("failed to decode audio", zap.Error(err))
		return toolError(fmt.Sprintf("Failed to decode audio: %v", err)), VerifySpeakerOutput{}, nil
	}

	result, err := s.config.Verifier.Verify(ctx, clip, input.Name)
	if err != nil {
		if errors.Is(err, verifier.ErrNoMatch) {
			return toolError(verifier.NoMatchMessage(input.Name)), VerifySpeakerOutput{}, nil
		}
		logger.Error("verification failed", zap.Error(err))
		return toolError(fmt.Sprintf("Verification failed: %v", err)), VerifySpeakerOutput{}, nil
	}

	output := VerifySpeakerOutput{
		ClaimedName: result.ClaimedName,
		MatchedName: result.MatchedName,
		Score:       result.Score,
		Threshold:   result.Threshold,
		Verified:    result.Verified,
		Message:     result.Message(),
	}

	// Serialize the structured output as JSON for the text field
	// Per MCP spec: tools returning structured content should also return
	// serialized JSON in a TextContent block for backwards compatibility
	jsonBytes, err := json.Marshal(output)
	if err != nil {
		logger.Error("failed to marshal verify output", zap.Error(err))
		return toolError(fmt.Sprintf("Failed to serialize result: %v", err)), VerifySpeakerOutput{}, nil
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(jsonBytes)},
		},
	}, output, nil
}

// toolError wraps a message in an error CallToolResult.
func toolError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: msg},
		},
	}
}
