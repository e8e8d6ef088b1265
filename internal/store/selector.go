package store

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/config"
)

// Backend identifies a storage implementation.
type Backend string

const (
	BackendLakebase  Backend = "lakebase"
	BackendPostgres  Backend = "postgres"
	BackendWarehouse Backend = "warehouse"
	BackendMemory    Backend = "memory"
)

// order is the fallback chain: each backend that fails to initialize
// hands over to the next.
var order = []Backend{BackendLakebase, BackendPostgres, BackendWarehouse, BackendMemory}

// Detect is the pure selection function: it inspects which credential
// groups are present in the configuration and names the most capable
// backend. It performs no I/O and is decided once at startup, never
// re-probed mid-process.
func Detect(cfg *config.Config) Backend {
	if cfg.Lakebase.Host != "" && cfg.Lakebase.Database != "" &&
		cfg.Lakebase.ClientID != "" && cfg.Lakebase.ClientSecret != "" {
		return BackendLakebase
	}
	if cfg.Postgres.Host != "" && cfg.Postgres.Database != "" && cfg.Postgres.User != "" {
		return BackendPostgres
	}
	if cfg.Warehouse.Hostname != "" && cfg.Warehouse.HTTPPath != "" && cfg.Warehouse.Token != "" {
		return BackendWarehouse
	}
	return BackendMemory
}

// Remote bundles the two remote capabilities backends may need:
// endpoint listing for refresh and database credential minting for
// Lakebase. remote.Client satisfies it.
type Remote interface {
	EndpointSource
	CredentialMinter
}

// Open initializes the detected backend, falling through the chain on
// failure so a broken database never prevents startup; the in-memory
// backend is the terminal fallback and cannot fail. Once a backend is
// ready, the endpoint set is refreshed from the remote listing.
// remote may be nil when no remote credentials exist.
func Open(ctx context.Context, cfg *config.Config, remote Remote) Store {
	var source EndpointSource
	var minter CredentialMinter
	if remote != nil {
		source = remote
		minter = remote
	}

	start := 0
	detected := Detect(cfg)
	for i, b := range order {
		if b == detected {
			start = i
			break
		}
	}

	var s Store
	for _, b := range order[start:] {
		var err error
		switch b {
		case BackendLakebase:
			if minter == nil {
				log.Warn().Msg("lakebase configured but no workspace client available, falling back")
				continue
			}
			s, err = NewLakebaseStore(ctx, cfg.Lakebase, minter, source)
		case BackendPostgres:
			if cfg.Postgres.Host == "" || cfg.Postgres.Database == "" || cfg.Postgres.User == "" {
				continue
			}
			s, err = NewPostgresStore(ctx, cfg.Postgres, source)
		case BackendWarehouse:
			if cfg.Warehouse.Hostname == "" || cfg.Warehouse.HTTPPath == "" || cfg.Warehouse.Token == "" {
				continue
			}
			s, err = NewWarehouseStore(ctx, cfg.Warehouse, source)
		case BackendMemory:
			s = NewMemoryStore(source)
		}
		if err != nil {
			log.Warn().Err(err).Str("backend", string(b)).Msg("storage backend failed to initialize, falling back")
			s = nil
			continue
		}
		if s != nil {
			log.Info().Str("backend", string(b)).Msg("storage backend selected")
			break
		}
	}

	if _, err := s.RefreshEndpointsFromRemote(ctx); err != nil {
		log.Warn().Err(err).Msg("initial endpoint refresh failed")
	}
	return s
}
