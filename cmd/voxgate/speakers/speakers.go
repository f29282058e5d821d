// Package speakerscmder provides the speakers command for listing and
// clearing enrolled speakers on a running voxgate server.
package speakerscmder

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/voxgateco/voxgate/api"
	"github.com/voxgateco/voxgate/pkg/cliui"
	"github.com/voxgateco/voxgate/pkg/config"
)

const speakersLongDesc string = `List the speakers enrolled on a running voxgate server.

Shows each enrolled speaker's name and ID. Embeddings are never returned.

Examples:
  voxgate speakers
  voxgate speakers --api-target http://localhost:7860
  voxgate speakers clear`

const speakersShortDesc string = "List enrolled speakers"

// SpeakerList is the response shape of the speaker listing endpoint.
type SpeakerList struct {
	Count    int                   `json:"count"`
	Speakers []api.SpeakerResponse `json:"speakers"`
}

func NewSpeakersCmd() *cobra.Command {
	var apiTarget string

	cmd := &cobra.Command{
		Use:   "speakers",
		Short: speakersShortDesc,
		Long:  speakersLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return resolveAPITarget(cmd, &apiTarget)
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return runList(apiTarget)
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.PersistentFlags().StringVar(&apiTarget, "api-target", defaults.Client.APITarget, "Voxgate API server URL")

	cmd.AddCommand(newClearCmd(&apiTarget))

	return cmd
}

const clearLongDesc string = `Remove every enrolled speaker from a running voxgate server.

This recreates the underlying collection and cannot be undone.

Examples:
  voxgate speakers clear`

func newClearCmd(apiTarget *string) *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove all enrolled speakers",
		Long:  clearLongDesc,
		Args:  cobra.NoArgs,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return resolveAPITarget(cmd, apiTarget)
		},
		RunE: func(_ *cobra.Command, _ []string) error {
			return runClear(*apiTarget)
		},
	}
}

// resolveAPITarget fills the api target from config when the flag is unset.
func resolveAPITarget(cmd *cobra.Command, apiTarget *string) error {
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
		*apiTarget = cfg.Client.APITarget
	}
	return nil
}

func runList(apiTarget string) error {
	list, err := ListAPI(apiTarget)
	if err != nil {
		return err
	}

	if list.Count == 0 {
		fmt.Printf("\n  %s\n\n", cliui.DimStyle.Render("No speakers enrolled."))
		return nil
	}

	fmt.Printf("\n  %s %d\n\n", cliui.KeyStyle.Render("Enrolled speakers:"), list.Count)
	for _, sp := range list.Speakers {
		fmt.Printf("  %s  %s\n",
			cliui.NameStyle.Render(sp.Name),
			cliui.DimStyle.Render(sp.ID),
		)
	}
	fmt.Println()

	return nil
}

func runClear(apiTarget string) error {
	target, err := url.Parse(apiTarget)
	if err != nil {
		return fmt.Errorf("invalid API target URL: %w", err)
	}
	target.Path = "/v1/speakers"

	req, err := http.NewRequestWithContext(context.Background(), http.MethodDelete, target.String(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to connect to voxgate API at %s: %w", apiTarget, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("clear request failed (HTTP %d): %s", resp.StatusCode, string(data))
	}

	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return fmt.Errorf("failed to parse clear response: %w", err)
	}

	fmt.Printf("\n  %s\n\n", body.Message)
	return nil
}

// ListAPI fetches the enrolled speakers from a running server.
// Exported so other commands can reuse it.
func ListAPI(apiTarget string) (*SpeakerList, error) {
	target, err := url.Parse(apiTarget)
	if err != nil {
		return nil, fmt.Errorf("invalid API target URL: %w", err)
	}
	target.Path = "/v1/speakers"

	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

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
		return nil, fmt.Errorf("list request failed (HTTP %d): %s", resp.StatusCode, string(data))
	}

	var list SpeakerList
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse speaker list: %w", err)
	}

	return &list, nil
}
