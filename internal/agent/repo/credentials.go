package repo

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/catalog-assistant/server/internal/agent/model"
	errx "github.com/catalog-assistant/server/internal/core/error"
	logx "github.com/catalog-assistant/server/pkg/logger"
)

const (
	fieldBaseURL        = "base_url"
	fieldConsumerKey    = "consumer_key"
	fieldConsumerSecret = "consumer_secret"
)

// RedisCredentialRepository reads catalog credentials from a per-business hash.
type RedisCredentialRepository struct {
	rdb redis.Cmdable
}

var _ model.CredentialResolver = (*RedisCredentialRepository)(nil)

func NewRedisCredentialRepository(rdb redis.Cmdable) *RedisCredentialRepository {
	return &RedisCredentialRepository{rdb: rdb}
}

func (r *RedisCredentialRepository) credentialsKey(businessID string) string {
	return fmt.Sprintf("business:%s:catalog", businessID)
}

// ResolveCredentials loads the hash for businessID. A missing or incomplete
// hash is an ErrConfiguration; transport failures are ErrUpstreamUnavailable.
func (r *RedisCredentialRepository) ResolveCredentials(ctx context.Context, businessID string) (model.CatalogCredentials, error) {
	key := r.credentialsKey(businessID)

	fields, err := r.rdb.HGetAll(ctx, key).Result()
	if err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to load catalog credentials from redis")
		return model.CatalogCredentials{}, errx.WrapRedis(err)
	}
	if len(fields) == 0 {
		return model.CatalogCredentials{}, errx.Wrap(errx.ErrConfiguration, fmt.Errorf("no credentials stored for business %s", businessID))
	}

	creds := model.CatalogCredentials{
		BaseURL:        strings.TrimSpace(fields[fieldBaseURL]),
		ConsumerKey:    strings.TrimSpace(fields[fieldConsumerKey]),
		ConsumerSecret: strings.TrimSpace(fields[fieldConsumerSecret]),
	}
	if !creds.Valid() {
		return model.CatalogCredentials{}, errx.Wrap(errx.ErrConfiguration, fmt.Errorf("incomplete credentials for business %s", businessID))
	}
	return creds, nil
}

// StaticCredentialResolver serves one set of credentials to every business.
type StaticCredentialResolver struct {
	creds model.CatalogCredentials
}

var _ model.CredentialResolver = (*StaticCredentialResolver)(nil)

func NewStaticCredentialResolver(cfg model.StaticCredentialsConfig) *StaticCredentialResolver {
	return &StaticCredentialResolver{creds: model.CatalogCredentials{
		BaseURL:        strings.TrimSpace(cfg.BaseURL),
		ConsumerKey:    strings.TrimSpace(cfg.ConsumerKey),
		ConsumerSecret: strings.TrimSpace(cfg.ConsumerSecret),
	}}
}

func (s *StaticCredentialResolver) ResolveCredentials(_ context.Context, _ string) (model.CatalogCredentials, error) {
	if !s.creds.Valid() {
		return model.CatalogCredentials{}, errx.Wrap(errx.ErrConfiguration, fmt.Errorf("CATALOG_BASE_URL, CATALOG_CONSUMER_KEY and CATALOG_CONSUMER_SECRET must be set"))
	}
	return s.creds, nil
}
