// Package configcmder provides the config command for managing persistent
// voxgate configuration stored in the .voxgate/ directory.
package configcmder

import (
	"github.com/spf13/cobra"
)

const configLongDesc string = `Manage persistent voxgate configuration.

Configuration is stored as config.toml in the .voxgate/ directory and provides
default values for command flags. CLI flags always take precedence over
config file values.

Keys use dotted notation matching the TOML section structure:
  api.listen, client.api_target,
  vector_store.provider, vector_store.target, vector_store.collection,
  embedding.provider, embedding.target, embedding.model, embedding.dimensions,
  verify.threshold, verify.top_k,
  eventstream.provider, eventstream.brokers, eventstream.topic

Use subcommands to get, set, or list configuration values:
  voxgate config set <key> <value>    Set a configuration value
  voxgate config get <key>            Get a configuration value
  voxgate config list                 List all configuration values

Examples:
  voxgate config set vector_store.provider sqlite
  voxgate config set embedding.target http://localhost:8100
  voxgate config get embedding.model
  voxgate config list`

const configShortDesc string = "Manage persistent voxgate configuration"

func NewConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: configShortDesc,
		Long:  configLongDesc,
	}

	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newGetCmd())
	cmd.AddCommand(newListCmd())

	return cmd
}
