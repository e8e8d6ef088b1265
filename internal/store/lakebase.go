package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/00125495/AngloAmerican-StrataDataPlatform/internal/config"
)

// tokenRefreshInterval is deliberately shorter than the server-side
// token lifetime (about an hour) so a fresh token is always in the
// cell before the old one expires.
const tokenRefreshInterval = 50 * time.Minute

// CredentialMinter mints short-lived database access tokens.
// Satisfied by remote.Client.
type CredentialMinter interface {
	GenerateDatabaseCredential(ctx context.Context, instanceName string) (string, error)
}

// tokenCell is the shared mutable cell between the refresh loop
// (writer) and the pool's per-connection hook (reader).
type tokenCell struct {
	mu sync.RWMutex
	v  string
}

func (t *tokenCell) load() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.v
}

func (t *tokenCell) store(v string) {
	t.mu.Lock()
	t.v = v
	t.mu.Unlock()
}

// LakebaseStore is the Postgres backend over a Databricks-managed
// database instance. The pool authenticates with short-lived OAuth
// database tokens instead of a static password: every new physical
// connection reads the current token from the cell at connect time,
// and a background loop re-mints the token before it expires. All
// SQL behavior is inherited from PostgresStore.
type LakebaseStore struct {
	*PostgresStore
	token  *tokenCell
	cancel context.CancelFunc
	done   chan struct{}
}

var _ Store = (*LakebaseStore)(nil)

func NewLakebaseStore(ctx context.Context, cfg config.LakebaseConfig, minter CredentialMinter, source EndpointSource) (*LakebaseStore, error) {
	cell := &tokenCell{}
	initial, err := mintWithRetry(ctx, minter, cfg.InstanceName)
	if err != nil {
		return nil, fmt.Errorf("lakebase initial credential: %w", err)
	}
	cell.store(initial)

	dsn := fmt.Sprintf("host=%s port=%d dbname=%s user=%s sslmode=require",
		cfg.Host, cfg.Port, cfg.Database, cfg.User)
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("lakebase pool config: %w", err)
	}
	// The password is read from the cell on every new physical
	// connection, not captured at pool creation: connections opened
	// after a refresh must use the refreshed token.
	poolCfg.BeforeConnect = func(ctx context.Context, cc *pgx.ConnConfig) error {
		cc.Password = cell.load()
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("lakebase pool: %w", err)
	}

	inner, err := initPostgresStore(ctx, pool, source)
	if err != nil {
		pool.Close()
		return nil, err
	}

	loopCtx, cancel := context.WithCancel(context.Background())
	s := &LakebaseStore{
		PostgresStore: inner,
		token:         cell,
		cancel:        cancel,
		done:          make(chan struct{}),
	}
	go s.refreshLoop(loopCtx, minter, cfg.InstanceName)
	log.Info().Str("host", cfg.Host).Str("database", cfg.Database).Str("user", cfg.User).Msg("lakebase store ready")
	return s, nil
}

// refreshLoop re-mints the database token every tokenRefreshInterval
// until Close. A failed mint keeps the previous token in the cell and
// never surfaces to request handlers; the next tick tries again.
func (s *LakebaseStore) refreshLoop(ctx context.Context, minter CredentialMinter, instanceName string) {
	defer close(s.done)
	ticker := time.NewTicker(tokenRefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			token, err := mintWithRetry(ctx, minter, instanceName)
			if err != nil {
				log.Error().Err(err).Msg("database token refresh failed, keeping previous token")
				continue
			}
			s.token.store(token)
			log.Info().Msg("database token refreshed")
		}
	}
}

// mintWithRetry retries transient credential-mint failures with
// exponential backoff, bounded so startup cannot hang.
func mintWithRetry(ctx context.Context, minter CredentialMinter, instanceName string) (string, error) {
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 4), ctx)
	return backoff.RetryWithData(func() (string, error) {
		return minter.GenerateDatabaseCredential(ctx, instanceName)
	}, b)
}

// Close stops the refresh loop, waits for it to exit, then closes the
// pool.
func (s *LakebaseStore) Close() error {
	s.cancel()
	<-s.done
	return s.PostgresStore.Close()
}
