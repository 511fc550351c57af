package dbmanager

import (
	"bytes"
	"compress/zlib"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"query-genie/pkg/redis"
)

const (
	schemaKeyPrefix  = "schema:"
	defaultSchemaTTL = 10 * time.Minute
)

// ErrSchemaNotCached is returned by Retrieve on a cache miss.
var ErrSchemaNotCached = errors.New("schema not cached")

// SchemaStorageService caches the formatted schema text per session,
// zlib-compressed, in Redis.
type SchemaStorageService struct {
	redisRepo redis.IRedisRepositories
	ttl       time.Duration
}

func NewSchemaStorageService(redisRepo redis.IRedisRepositories, ttl time.Duration) *SchemaStorageService {
	if ttl <= 0 {
		ttl = defaultSchemaTTL
	}
	return &SchemaStorageService{
		redisRepo: redisRepo,
		ttl:       ttl,
	}
}

func (s *SchemaStorageService) Store(ctx context.Context, sessionID, schemaText string) error {
	compressed, err := s.compress([]byte(schemaText))
	if err != nil {
		return fmt.Errorf("failed to compress schema: %w", err)
	}
	return s.redisRepo.Set(schemaKey(sessionID), compressed, s.ttl, ctx)
}

func (s *SchemaStorageService) Retrieve(ctx context.Context, sessionID string) (string, error) {
	data, err := s.redisRepo.Get(schemaKey(sessionID), ctx)
	if errors.Is(err, redis.ErrKeyNotFound) {
		return "", ErrSchemaNotCached
	}
	if err != nil {
		return "", err
	}

	decompressed, err := s.decompress(data)
	if err != nil {
		return "", fmt.Errorf("failed to decompress schema: %w", err)
	}
	return string(decompressed), nil
}

func (s *SchemaStorageService) Invalidate(ctx context.Context, sessionID string) error {
	return s.redisRepo.Del(schemaKey(sessionID), ctx)
}

func schemaKey(sessionID string) string {
	return schemaKeyPrefix + sessionID
}

// Compression helpers
func (s *SchemaStorageService) compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)

	if _, err := w.Write(data); err != nil {
		return nil, fmt.Errorf("failed to compress data: %w", err)
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to close compressor: %w", err)
	}

	return buf.Bytes(), nil
}

func (s *SchemaStorageService) decompress(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create zlib reader: %w", err)
	}
	defer r.Close()

	decompressed, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress data: %w", err)
	}

	return decompressed, nil
}
