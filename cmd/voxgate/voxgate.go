// Package voxgatecmder
package voxgatecmder

import (
	"github.com/spf13/cobra"

	configcmder "github.com/voxgateco/voxgate/cmd/voxgate/config"
	enrollcmder "github.com/voxgateco/voxgate/cmd/voxgate/enroll"
	servecmder "github.com/voxgateco/voxgate/cmd/voxgate/serve"
	speakerscmder "github.com/voxgateco/voxgate/cmd/voxgate/speakers"
	verifycmder "github.com/voxgateco/voxgate/cmd/voxgate/verify"
	versioncmder "github.com/voxgateco/voxgate/cmd/version"
)

const voxgateLongDesc string = `Voxgate is speaker verification for your services.

Run the server using:
  voxgate serve        Run the API server and web UI

Interact with a running server using:
  voxgate enroll       Enroll a speaker from a WAV file
  voxgate verify       Verify a claimed identity from a WAV file
  voxgate speakers     List or clear enrolled speakers`

const voxgateShortDesc string = "Voxgate - Speaker Verification"

func NewVoxgateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voxgate",
		Short: voxgateShortDesc,
		Long:  voxgateLongDesc,
	}

	// Global flags
	cmd.PersistentFlags().BoolP("debug", "d", false, "Enable debug logging")
	cmd.PersistentFlags().String("config-dir", "", "Path to the .voxgate config directory")

	// Add subcommands
	cmd.AddCommand(servecmder.NewServeCmd())
	cmd.AddCommand(enrollcmder.NewEnrollCmd())
	cmd.AddCommand(verifycmder.NewVerifyCmd())
	cmd.AddCommand(speakerscmder.NewSpeakersCmd())
	cmd.AddCommand(configcmder.NewConfigCmd())
	cmd.AddCommand(versioncmder.NewVersionCmd())

	return cmd
}
