// Package verifycmder provides the verify command for checking a claimed
// speaker identity against a running voxgate server.
package verifycmder

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/voxgateco/voxgate/api"
	enrollcmder "github.com/voxgateco/voxgate/cmd/voxgate/enroll"
	"github.com/voxgateco/voxgate/pkg/audio"
	"github.com/voxgateco/voxgate/pkg/cliui"
	"github.com/voxgateco/voxgate/pkg/config"
)

type verifyCommander struct {
	name      string
	audioPath string
	apiTarget string
}

const verifyLongDesc string = `Verify a claimed speaker identity against a running voxgate server.

Reads a WAV voice sample from disk and submits it with the claimed name. The
server compares the sample against every enrolled voice and accepts the claim
when the closest enrolled voice belongs to the claimed speaker.

Examples:
  voxgate verify sample.wav --name Alice
  voxgate verify sample.wav --name Alice --api-target http://localhost:7860`

const verifyShortDesc string = "Verify a claimed identity from a WAV file"

func NewVerifyCmd() *cobra.Command {
	cmder := &verifyCommander{}

	cmd := &cobra.Command{
		Use:   "verify <audio.wav>",
		Short: verifyShortDesc,
		Long:  verifyLongDesc,
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
	cmd.Flags().StringVarP(&cmder.name, "name", "n", "", "Claimed speaker name (required)")
	cmd.Flags().StringVar(&cmder.apiTarget, "api-target", defaults.Client.APITarget, "Voxgate API server URL")
	cmd.MarkFlagRequired("name")

	return cmd
}

func (c *verifyCommander) run() error {
	// Validate the clip locally before uploading.
	clip, err := audio.Load(c.audioPath)
	if err != nil {
		return err
	}

	var resp *api.VerifyResponse
	err = cliui.Step(os.Stdout, fmt.Sprintf("Verifying claim for %q", c.name), func() error {
		var stepErr error
		resp, stepErr = VerifyAPI(c.apiTarget, c.name, clip.Path, clip.Data)
		return stepErr
	})
	if err != nil {
		return err
	}

	fmt.Printf("\n  %s\n", resp.Message)
	fmt.Printf("  %s %s  %s %.4f\n\n",
		cliui.KeyStyle.Render("Closest match:"),
		cliui.NameStyle.Render(resp.MatchedName),
		cliui.KeyStyle.Render("similarity:"),
		resp.Score,
	)

	return nil
}

// VerifyAPI submits a voice sample to the verify endpoint and returns the
// parsed response. Exported so other commands can reuse it.
func VerifyAPI(apiTarget, name, filename string, wavData []byte) (*api.VerifyResponse, error) {
	data, err := enrollcmder.PostAudio(apiTarget, "/v1/speakers/verify", name, filename, wavData)
	if err != nil {
		return nil, err
	}

	var resp api.VerifyResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse verify response: %w", err)
	}

	return &resp, nil
}
