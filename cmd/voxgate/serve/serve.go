// Package servecmder provides the serve command for running the voxgate server.
package servecmder

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/voxgateco/voxgate/api"
	"github.com/voxgateco/voxgate/api/mcp"
	"github.com/voxgateco/voxgate/pkg/config"
	embeddingutils "github.com/voxgateco/voxgate/pkg/embeddings/utils"
	eventstreamutils "github.com/voxgateco/voxgate/pkg/eventstream/utils"
	"github.com/voxgateco/voxgate/pkg/logger"
	vectorutils "github.com/voxgateco/voxgate/pkg/vector/utils"
	"github.com/voxgateco/voxgate/pkg/verifier"
)

// serveFlags is the flag registry for the serve command.
var serveFlags = config.FlagSet{
	config.FlagAPIListen:       {Name: "listen", Shorthand: "l", ViperKey: "api.listen", Description: "Address for the server to listen on"},
	config.FlagVectorStoreProv: {Name: "vector-store-provider", ViperKey: "vector_store.provider", Description: "Vector store provider (qdrant, sqlite, pgvector, inmemory)"},
	config.FlagVectorStoreTgt:  {Name: "vector-store-target", ViperKey: "vector_store.target", Description: "Vector store target (host:port, file path, or connection string)"},
	config.FlagCollection:      {Name: "collection", ViperKey: "vector_store.collection", Description: "Vector store collection name"},
	config.FlagEmbeddingProv:   {Name: "embedding-provider", ViperKey: "embedding.provider", Description: "Speaker embedding provider (speechbrain)"},
	config.FlagEmbeddingTgt:    {Name: "embedding-target", ViperKey: "embedding.target", Description: "Speaker embedding service URL"},
	config.FlagEmbeddingModel:  {Name: "embedding-model", ViperKey: "embedding.model", Description: "Speaker embedding model name"},
	config.FlagEmbeddingDims:   {Name: "embedding-dimensions", ViperKey: "embedding.dimensions", Description: "Speaker embedding dimensionality"},
	config.FlagThreshold:       {Name: "threshold", ViperKey: "verify.threshold", Description: "Similarity threshold reported with verification results"},
	config.FlagTopK:            {Name: "top-k", ViperKey: "verify.top_k", Description: "Number of nearest neighbors fetched during verification"},
	config.FlagEventsProv:      {Name: "events-provider", ViperKey: "eventstream.provider", Description: "Event stream provider (kafka, nop)"},
	config.FlagEventsBrokers:   {Name: "events-brokers", ViperKey: "eventstream.brokers", Description: "Comma-separated Kafka broker list"},
	config.FlagEventsTopic:     {Name: "events-topic", ViperKey: "eventstream.topic", Description: "Event stream topic"},
}

// serveFlagKeys lists the registry keys bound to viper in PreRunE.
var serveFlagKeys = []string{
	config.FlagAPIListen,
	config.FlagVectorStoreProv,
	config.FlagVectorStoreTgt,
	config.FlagCollection,
	config.FlagEmbeddingProv,
	config.FlagEmbeddingTgt,
	config.FlagEmbeddingModel,
	config.FlagEmbeddingDims,
	config.FlagThreshold,
	config.FlagTopK,
	config.FlagEventsProv,
	config.FlagEventsBrokers,
	config.FlagEventsTopic,
}

type ServeCommander struct {
	listen          string
	vectorProvider  string
	vectorTarget    string
	collection      string
	embedProvider   string
	embedTarget     string
	embedModel      string
	embedDimensions uint
	threshold       float64
	topK            int
	eventsProvider  string
	eventsBrokers   string
	eventsTopic     string
	noMCP           bool

	debug  bool
	viper  *viper.Viper
	logger *zap.Logger
}

const serveLongDesc string = `Run the voxgate server.

Serves the browser UI, the speaker REST API, and the MCP endpoint on a single
address. Requires a running speaker embedding service and, unless the inmemory
provider is selected, a reachable vector store.

Examples:
  voxgate serve
  voxgate serve --listen :7860 --vector-store-provider qdrant
  voxgate serve --vector-store-provider sqlite --vector-store-target ./voxgate.db
  voxgate serve --events-provider kafka --events-brokers localhost:9092`

const serveShortDesc string = "Run the voxgate server"

func NewServeCmd() *cobra.Command {
	cmder := &ServeCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")

			v, err := config.InitViper(configDir)
			if err != nil {
				return err
			}

			config.BindRegisteredFlags(v, cmd, serveFlags, serveFlagKeys)
			cmder.viper = v
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			var err error
			cmder.debug, err = cmd.Flags().GetBool("debug")
			if err != nil {
				return fmt.Errorf("could not get debug flag: %v", err)
			}
			return cmder.run()
		},
	}

	config.AddStringFlag(cmd, serveFlags, config.FlagAPIListen, &cmder.listen)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorStoreProv, &cmder.vectorProvider)
	config.AddStringFlag(cmd, serveFlags, config.FlagVectorStoreTgt, &cmder.vectorTarget)
	config.AddStringFlag(cmd, serveFlags, config.FlagCollection, &cmder.collection)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingProv, &cmder.embedProvider)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingTgt, &cmder.embedTarget)
	config.AddStringFlag(cmd, serveFlags, config.FlagEmbeddingModel, &cmder.embedModel)
	config.AddUintFlag(cmd, serveFlags, config.FlagEmbeddingDims, &cmder.embedDimensions)
	config.AddFloat64Flag(cmd, serveFlags, config.FlagThreshold, &cmder.threshold)
	config.AddIntFlag(cmd, serveFlags, config.FlagTopK, &cmder.topK)
	config.AddStringFlag(cmd, serveFlags, config.FlagEventsProv, &cmder.eventsProvider)
	config.AddStringFlag(cmd, serveFlags, config.FlagEventsBrokers, &cmder.eventsBrokers)
	config.AddStringFlag(cmd, serveFlags, config.FlagEventsTopic, &cmder.eventsTopic)
	cmd.Flags().BoolVar(&cmder.noMCP, "no-mcp", false, "Disable the MCP endpoint")

	return cmd
}

func (c *ServeCommander) run() error {
	c.logger = logger.NewLogger(c.debug)
	defer c.logger.Sync()

	v := c.viper

	embedder, err := embeddingutils.NewEmbedder(&embeddingutils.NewEmbedderOpts{
		ProviderType: v.GetString("embedding.provider"),
		TargetURL:    v.GetString("embedding.target"),
		Model:        v.GetString("embedding.model"),
		Dimensions:   v.GetUint("embedding.dimensions"),
	})
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	defer embedder.Close()

	store, err := vectorutils.NewVectorDriver(&vectorutils.NewVectorDriverOpts{
		ProviderType:   v.GetString("vector_store.provider"),
		Target:         v.GetString("vector_store.target"),
		CollectionName: v.GetString("vector_store.collection"),
		Dimensions:     v.GetUint("embedding.dimensions"),
		Logger:         c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating vector store: %w", err)
	}
	defer store.Close()

	events, err := eventstreamutils.NewPublisher(&eventstreamutils.NewPublisherOpts{
		ProviderType: v.GetString("eventstream.provider"),
		Brokers:      splitBrokers(v.GetString("eventstream.brokers")),
		Topic:        v.GetString("eventstream.topic"),
		Logger:       c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating event publisher: %w", err)
	}
	defer events.Close()

	vrf := verifier.NewVerifier(verifier.Config{
		Threshold: float32(v.GetFloat64("verify.threshold")),
		TopK:      v.GetInt("verify.top_k"),
	}, embedder, store, events, c.logger)

	server := api.NewServer(api.Config{
		ListenAddr: v.GetString("api.listen"),
	}, vrf, c.logger)

	mcpServer, err := mcp.NewServer(mcp.Config{
		Verifier: vrf,
		Noop:     c.noMCP,
		Logger:   c.logger,
	})
	if err != nil {
		return fmt.Errorf("creating MCP server: %w", err)
	}
	if !c.noMCP {
		server.MountMCP(mcpServer.Handler())
	}

	c.logger.Info("starting voxgate server",
		zap.String("listen", v.GetString("api.listen")),
		zap.String("vector_store", v.GetString("vector_store.provider")),
		zap.String("embedding", v.GetString("embedding.provider")),
		zap.String("eventstream", v.GetString("eventstream.provider")),
	)

	// Channel to capture errors from the server goroutine
	errChan := make(chan error, 1)

	go func() {
		if err := server.Run(); err != nil {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	// Wait for interrupt signal or error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return err
	case sig := <-sigChan:
		c.logger.Info("received signal, shutting down", zap.String("signal", sig.String()))
		return server.Shutdown()
	}
}

// splitBrokers parses a comma-separated broker list.
func splitBrokers(brokers string) []string {
	if brokers == "" {
		return nil
	}

	parts := strings.Split(brokers, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
