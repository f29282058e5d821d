// Package vectorutils constructs vector drivers from configuration.
package vectorutils

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"go.uber.org/zap"

	"github.com/voxgateco/voxgate/pkg/vector"
	"github.com/voxgateco/voxgate/pkg/vector/inmemory"
	"github.com/voxgateco/voxgate/pkg/vector/pgvector"
	"github.com/voxgateco/voxgate/pkg/vector/qdrant"
	"github.com/voxgateco/voxgate/pkg/vector/sqlitevec"
)

type NewVectorDriverOpts struct {
	// ProviderType selects the backend: qdrant, sqlite, pgvector or inmemory.
	ProviderType string

	// Target is provider-specific: "host:port" for qdrant, a database file
	// path for sqlite, a connection string for pgvector. Ignored by inmemory.
	Target string

	// CollectionName is the qdrant collection to use.
	CollectionName string

	// Dimensions is the embedding vector size.
	Dimensions uint

	// Logger is the configured zap logger.
	Logger *zap.Logger
}

func NewVectorDriver(o *NewVectorDriverOpts) (vector.Driver, error) {
	switch o.ProviderType {
	case "qdrant":
		host, port, err := splitTarget(o.Target)
		if err != nil {
			return nil, err
		}
		return qdrant.NewQdrantDriver(qdrant.Config{
			Host:           host,
			Port:           port,
			CollectionName: o.CollectionName,
			Dimensions:     o.Dimensions,
		}, o.Logger)

	case "sqlite":
		return sqlitevec.NewSQLiteVecDriver(sqlitevec.Config{
			DBPath:     o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger)

	case "pgvector":
		return pgvector.NewPgVectorDriver(context.Background(), pgvector.Config{
			ConnStr:    o.Target,
			Dimensions: o.Dimensions,
		}, o.Logger)

	case "inmemory":
		return inmemory.NewDriver(), nil

	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", o.ProviderType)
	}
}

// splitTarget parses an optional "host:port" target. An empty target falls
// back to the driver defaults (including Docker host auto-detection), a bare
// host keeps the default port.
func splitTarget(target string) (string, int, error) {
	if target == "" {
		return "", 0, nil
	}

	host, portStr, err := net.SplitHostPort(target)
	if err != nil {
		// No port in the target; treat the whole string as a host.
		return target, 0, nil
	}

	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, fmt.Errorf("invalid port in vector store target %q: %w", target, err)
	}

	return host, port, nil
}
