// Package sequence issues the unique integers account numbers are built from.
package sequence

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendHTTP     = "http"
)

// Generator yields a fresh, previously unused value on every call.
type Generator interface {
	NextAccountSequence(ctx context.Context) (int64, error)
}

// PostgresGenerator draws values from a PostgreSQL sequence.
type PostgresGenerator struct {
	db       *sql.DB
	sequence string
}

func NewPostgresGenerator(db *sql.DB) *PostgresGenerator {
	return &PostgresGenerator{db: db, sequence: "account_number_seq"}
}

func (g *PostgresGenerator) NextAccountSequence(ctx context.Context) (int64, error) {
	var next int64
	if err := g.db.QueryRowContext(ctx, `SELECT nextval($1::regclass)`, g.sequence).Scan(&next); err != nil {
		return 0, fmt.Errorf("next value of %s: %w", g.sequence, err)
	}
	return next, nil
}

// RedisGenerator increments a counter key; INCR is atomic across clients.
type RedisGenerator struct {
	client *goredis.Client
	key    string
}

func NewRedisGenerator(client *goredis.Client) *RedisGenerator {
	return &RedisGenerator{client: client, key: "sequence:account_number"}
}

func (g *RedisGenerator) NextAccountSequence(ctx context.Context) (int64, error) {
	next, err := g.client.Incr(ctx, g.key).Result()
	if err != nil {
		return 0, fmt.Errorf("increment %s: %w", g.key, err)
	}
	return next, nil
}

// HTTPGenerator calls the remote sequence-generator service.
type HTTPGenerator struct {
	baseURL string
	client  *http.Client
}

type sequenceResponse struct {
	AccountNumber *int64 `json:"accountNumber"`
}

func NewHTTPGenerator(baseURL string, timeout time.Duration) *HTTPGenerator {
	return &HTTPGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *HTTPGenerator) NextAccountSequence(ctx context.Context) (int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/sequence", bytes.NewReader([]byte("{}")))
	if err != nil {
		return 0, fmt.Errorf("build sequence request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("call sequence service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("sequence service returned status %d", resp.StatusCode)
	}

	var body sequenceResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return 0, fmt.Errorf("decode sequence response: %w", err)
	}
	if body.AccountNumber == nil {
		return 0, errors.New("sequence response carries no accountNumber")
	}
	if *body.AccountNumber <= 0 {
		return 0, fmt.Errorf("sequence service returned non-positive value %d", *body.AccountNumber)
	}
	return *body.AccountNumber, nil
}

// New selects the generator for backend.
func New(backend string, db *sql.DB, redisClient *goredis.Client, serviceURL string, timeout time.Duration) (Generator, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case BackendPostgres, "":
		return NewPostgresGenerator(db), nil
	case BackendRedis:
		return NewRedisGenerator(redisClient), nil
	case BackendHTTP:
		return NewHTTPGenerator(serviceURL, timeout), nil
	default:
		return nil, fmt.Errorf("unknown sequence backend %q", backend)
	}
}
