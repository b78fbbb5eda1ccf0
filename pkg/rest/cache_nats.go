package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fivetwenty-io/restverb/internal/constants"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSConfig configures the JetStream key-value cache.
type NATSConfig struct {
	// URL of the NATS server. Ignored when Conn is set.
	URL string
	// Conn reuses an existing connection; the cache does not close it.
	Conn *nats.Conn
	// Bucket name. Empty selects "restverb_responses".
	Bucket string
	// TTL is the bucket-level maximum age of entries.
	TTL time.Duration
}

// NATSCache stores responses in a JetStream KV bucket so several processes
// can share them.
type NATSCache struct {
	conn    *nats.Conn
	ownConn bool
	kv      jetstream.KeyValue
}

// NewNATSCache connects (unless config.Conn is set) and creates or binds the bucket.
func NewNATSCache(ctx context.Context, config *NATSConfig) (*NATSCache, error) {
	if config == nil {
		return nil, configError("cache", ErrNATSConfigMissing)
	}

	conn := config.Conn
	ownConn := false

	if conn == nil {
		if config.URL == "" {
			return nil, configError("cache.nats.url", constants.ErrNATSURLRequired)
		}

		var err error

		conn, err = nats.Connect(config.URL, nats.Name("restverb-cache"))
		if err != nil {
			return nil, fmt.Errorf("connecting to NATS: %w", err)
		}

		ownConn = true
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = constants.DefaultNATSBucket
	}

	js, err := jetstream.New(conn)
	if err != nil {
		closeIfOwned(conn, ownConn)

		return nil, fmt.Errorf("creating JetStream context: %w", err)
	}

	kv, err := js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      bucket,
		Description: "restverb cached GET responses",
		TTL:         config.TTL,
	})
	if err != nil {
		closeIfOwned(conn, ownConn)

		return nil, fmt.Errorf("creating key-value bucket %q: %w", bucket, err)
	}

	return &NATSCache{conn: conn, ownConn: ownConn, kv: kv}, nil
}

// Get returns a fresh entry or ErrCacheMiss.
func (c *NATSCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	kvEntry, err := c.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, ErrCacheMiss
		}

		return nil, fmt.Errorf("reading cache entry: %w", err)
	}

	var entry CacheEntry

	err = json.Unmarshal(kvEntry.Value(), &entry)
	if err != nil {
		return nil, fmt.Errorf("decoding cache entry: %w", err)
	}

	if entry.Expired() {
		_ = c.kv.Delete(ctx, key)

		return nil, ErrCacheMiss
	}

	return &entry, nil
}

// Set stores entry under key.
func (c *NATSCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry: %w", err)
	}

	_, err = c.kv.Put(ctx, key, data)
	if err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}

	return nil
}

// Delete removes key.
func (c *NATSCache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(ctx, key)
	if err != nil && !errors.Is(err, jetstream.ErrKeyNotFound) {
		return fmt.Errorf("deleting cache entry: %w", err)
	}

	return nil
}

// Clear removes every key in the bucket.
func (c *NATSCache) Clear(ctx context.Context) error {
	lister, err := c.kv.ListKeys(ctx)
	if err != nil {
		return fmt.Errorf("listing cache keys: %w", err)
	}

	defer func() {
		_ = lister.Stop()
	}()

	for key := range lister.Keys() {
		err := c.Delete(ctx, key)
		if err != nil {
			return err
		}
	}

	return nil
}

// Close releases the connection if the cache opened it.
func (c *NATSCache) Close() {
	closeIfOwned(c.conn, c.ownConn)
}

func closeIfOwned(conn *nats.Conn, owned bool) {
	if owned && conn != nil {
		conn.Close()
	}
}
