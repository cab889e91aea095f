package errx

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
)

// WrapRedis maps Redis errors to AppError with appropriate status codes.
func WrapRedis(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, redis.Nil) {
		return New(err, http.StatusNotFound, RedisNotFoundMessage)
	}
	return New(err, http.StatusBadGateway, RedisErrorMessage)
}

// WrapDatabase maps PostgreSQL errors to AppError. The driver detail stays in Err.
func WrapDatabase(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return New(err, http.StatusGatewayTimeout, DatabaseTimeoutMessage)
	case errors.Is(err, pgx.ErrNoRows):
		return New(err, http.StatusNotFound, DatabaseErrorMessage)
	default:
		return New(err, http.StatusBadGateway, DatabaseErrorMessage)
	}
}

// WrapOracle maps language model transport failures to AppError.
func WrapOracle(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return New(err, http.StatusGatewayTimeout, OracleTimeoutMessage)
	}
	return New(err, http.StatusBadGateway, OracleErrorMessage)
}
