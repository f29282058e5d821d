// Package enrollcmder provides the enroll command for registering a speaker
// with a running voxgate server.
package enrollcmder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/voxgateco/voxgate/api"
	"github.com/voxgateco/voxgate/pkg/audio"
	"github.com/voxgateco/voxgate/pkg/cliui"
	"github.com/voxgateco/voxgate/pkg/config"
)

type enrollCommander struct {
	name      string
	audioPath string
	apiTarget string
}

const enrollLongDesc string = `Enroll a speaker with a running voxgate server.

Reads a WAV voice sample from disk, validates it locally, and submits it to
the server under the given name. Each name can be enrolled once; enrolling an
already-registered name is rejected.

Examples:
  voxgate enroll alice.wav --name Alice
  voxgate enroll alice.wav --name Alice --api-target http://localhost:7860`

const enrollShortDesc string = "Enroll a speaker from a WAV file"

func NewEnrollCmd() *cobra.Command {
	cmder := &enrollCommander{}

	cmd := &cobra.Command{
		Use:   "enroll <audio.wav>",
		Short: enrollShortDesc,
		Long:  enrollLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("api-target") {
				cmder.apiTarget = cfg.Client.APITarget
			}
			return nil
		},
		RunE: func(_ *cobra.Command, args []string) error {
			cmder.audioPath = args[0]
			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().StringVarP(&cmder.name, "name", "n", "", "Speaker name to enroll under (required)")
	cmd.Flags().StringVar(&cmder.apiTarget, "api-target", defaults.Client.APITarget, "Voxgate API server URL")
	cmd.MarkFlagRequired("name")

	return cmd
}

func (c *enrollCommander) run() error {
	// Validate the clip locally before uploading.
	clip, err := audio.Load(c.audioPath)
	if err != nil {
		return err
	}

	var resp *api.EnrollResponse
	err = cliui.Step(os.Stdout, fmt.Sprintf("Enrolling %q", c.name), func() error {
		var stepErr error
		resp, stepErr = EnrollAPI(c.apiTarget, c.name, clip.Path, clip.Data)
		return stepErr
	})
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s\n\n", resp.Message)
	return nil
}

// EnrollAPI submits a voice sample to the enroll endpoint and returns the
// parsed response. Exported so other commands can reuse it.
func EnrollAPI(apiTarget, name, filename string, wavData []byte) (*api.EnrollResponse, error) {
	data, err := PostAudio(apiTarget, "/v1/speakers/enroll", name, filename, wavData)
	if err != nil {
		return nil, err
	}

	var resp api.EnrollResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse enroll response: %w", err)
	}

	return &resp, nil
}

// PostAudio posts a name and WAV sample as a multipart form to the given API
// path and returns the response bytes, treating non-200 statuses as errors.
// The enroll and verify endpoints share this request shape.
func PostAudio(apiTarget, path, name, filename string, wavData []byte) ([]byte, error) {
	body, contentType, err := audioForm(name, filename, wavData)
	if err != nil {
		return nil, err
	}

	return postForm(apiTarget, path, contentType, body)
}

// audioForm builds the multipart body shared by the enroll and verify endpoints.
func audioForm(name, filename string, wavData []byte) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	if err := writer.WriteField("name", name); err != nil {
		return nil, "", fmt.Errorf("building request: %w", err)
	}

	part, err := writer.CreateFormFile("audio", filepath.Base(filename))
	if err != nil {
		return nil, "", fmt.Errorf("building request: %w", err)
	}
	if _, err := part.Write(wavData); err != nil {
		return nil, "", fmt.Errorf("building request: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("building request: %w", err)
	}

	return body, writer.FormDataContentType(), nil
}

// postForm posts a multipart body to the given API path and returns the
// response bytes, treating non-200 statuses as errors.
func postForm(apiTarget, path, contentType string, body *bytes.Buffer) ([]byte, error) {
	target, err := url.Parse(apiTarget)
	if err != nil {
		return nil, fmt.Errorf("invalid API target URL: %w", err)
	}
	target.Path = path

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, target.String(), body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to voxgate API at %s: %w", apiTarget, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr api.ErrorResponse
		if err := json.Unmarshal(data, &apiErr); err == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("%s", strings.TrimSpace(apiErr.Error))
		}
		return nil, fmt.Errorf("request failed (HTTP %d): %s", resp.StatusCode, string(data))
	}

	return data, nil
}
