package errx

import (
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// WrapRedis tags a Redis failure with an error kind. A missing key means the
// stored configuration is absent (ErrConfiguration); anything else is a
// transport failure (ErrUpstreamUnavailable).
func WrapRedis(err error) *Error {
	if err == nil {
		return nil
	}

	if errors.Is(err, redis.Nil) {
		e := Wrap(ErrConfiguration, err)
		e.Message = RedisNotFoundMessage
		return e
	}

	e := Wrap(ErrUpstreamUnavailable, fmt.Errorf("redis: %w", err))
	e.Message = RedisErrorMessage
	return e
}
