package api

import (
	"errors"
	"io"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/voxgateco/voxgate/pkg/audio"
	"github.com/voxgateco/voxgate/pkg/verifier"
)

// ErrorResponse is the JSON body returned for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
}

// EnrollResponse is the JSON body returned for a successful enrollment.
type EnrollResponse struct {
	Message   string `json:"message"`
	SpeakerID string `json:"speaker_id"`
	Name      string `json:"name"`
	Enrolled  uint64 `json:"enrolled"`
}

// VerifyResponse is the JSON body returned for a completed verification.
type VerifyResponse struct {
	Message     string  `json:"message"`
	ClaimedName string  `json:"claimed_name"`
	MatchedName string  `json:"matched_name"`
	Score       float32 `json:"score"`
	Threshold   float32 `json:"threshold"`
	Verified    bool    `json:"verified"`
}

// SpeakerResponse is a single enrolled speaker in a listing.
type SpeakerResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// handlePing returns a simple health check response.
func (s *Server) handlePing(c *fiber.Ctx) error {
	return c.JSON("pong")
}

// handleEnroll registers a new speaker from a multipart form carrying a
// "name" field and an "audio" WAV file.
func (s *Server) handleEnroll(c *fiber.Ctx) error {
	name := c.FormValue("name")

	clip, err := s.formClip(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	result, err := s.verifier.Enroll(c.Context(), clip, name)
	if err != nil {
		switch {
		case errors.Is(err, verifier.ErrEmptyName):
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		case errors.Is(err, verifier.ErrAlreadyEnrolled):
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: verifier.AlreadyEnrolledMessage(name)})
		default:
			s.logger.Error("enrollment failed", zap.String("name", name), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "enrollment failed"})
		}
	}

	return c.JSON(EnrollResponse{
		Message:   result.Message(),
		SpeakerID: result.SpeakerID,
		Name:      result.Name,
		Enrolled:  result.Enrolled,
	})
}

// handleVerify checks a claimed identity from a multipart form carrying a
// "name" field and an "audio" WAV file.
func (s *Server) handleVerify(c *fiber.Ctx) error {
	name := c.FormValue("name")

	clip, err := s.formClip(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	result, err := s.verifier.Verify(c.Context(), clip, name)
	if err != nil {
		switch {
		case errors.Is(err, verifier.ErrEmptyName):
			return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
		case errors.Is(err, verifier.ErrNoMatch):
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: verifier.NoMatchMessage(name)})
		default:
			s.logger.Error("verification failed", zap.String("claimed_name", name), zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "verification failed"})
		}
	}

	return c.JSON(VerifyResponse{
		Message:     result.Message(),
		ClaimedName: result.ClaimedName,
		MatchedName: result.MatchedName,
		Score:       result.Score,
		Threshold:   result.Threshold,
		Verified:    result.Verified,
	})
}

// handleListSpeakers returns the enrolled speakers, without embeddings.
func (s *Server) handleListSpeakers(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 100)

	speakers, err := s.verifier.Speakers(c.Context(), limit)
	if err != nil {
		s.logger.Error("listing speakers failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to list speakers"})
	}

	resp := make([]SpeakerResponse, 0, len(speakers))
	for _, sp := range speakers {
		resp = append(resp, SpeakerResponse{ID: sp.ID, Name: sp.Name})
	}

	return c.JSON(map[string]any{
		"count":    len(resp),
		"speakers": resp,
	})
}

// handleClear removes every enrolled speaker.
func (s *Server) handleClear(c *fiber.Ctx) error {
	if err := s.verifier.Clear(c.Context()); err != nil {
		s.logger.Error("clearing collection failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "failed to clear collection"})
	}

	return c.JSON(map[string]any{
		"message": verifier.ClearedMessage,
	})
}

// formClip extracts and decodes the "audio" file from a multipart form.
func (s *Server) formClip(c *fiber.Ctx) (*audio.Clip, error) {
	fileHeader, err := c.FormFile("audio")
	if err != nil {
		return nil, errors.New("audio file is required")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, errors.New("could not open audio file")
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.New("could not read audio file")
	}

	clip, err := audio.Decode(data)
	if err != nil {
		return nil, err
	}
	clip.Path = fileHeader.Filename

	return clip, nil
}
