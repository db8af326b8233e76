package linkcheck

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// NATSCacheOptions configures the shared JetStream-backed result cache.
type NATSCacheOptions struct {
	URL      string // NATS server URL
	Bucket   string // KV bucket for cached results
	Subject  string // subject for broken-link events
	MaxBytes int64  // bucket size cap; 0 means 100MB
}

// NATSCache is a ResultCache plus EventPublisher backed by a JetStream
// key-value bucket. Daemons share it across builds so external hosts are
// only re-checked when the cache TTL lapses.
type NATSCache struct {
	conn    *nats.Conn
	js      jetstream.JetStream
	kv      jetstream.KeyValue
	subject string
}

// NewNATSCache connects to NATS and ensures the KV bucket exists.
func NewNATSCache(ctx context.Context, opts NATSCacheOptions) (*NATSCache, error) {
	if opts.URL == "" {
		return nil, errors.New("nats url is required")
	}
	if opts.Bucket == "" {
		return nil, errors.New("kv bucket name is required")
	}
	conn, err := nats.Connect(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("create jetstream context: %w", err)
	}
	c := &NATSCache{conn: conn, js: js, subject: opts.Subject}
	if err := c.initBucket(ctx, opts); err != nil {
		conn.Close()
		return nil, err
	}
	slog.Info("link cache connected", "url", opts.URL, "bucket", opts.Bucket, "subject", opts.Subject)
	return c, nil
}

func (c *NATSCache) initBucket(ctx context.Context, opts NATSCacheOptions) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	kv, err := c.js.KeyValue(ctx, opts.Bucket)
	if err == nil {
		c.kv = kv
		return nil
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = 100 * 1024 * 1024
	}
	kv, err = c.js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      opts.Bucket,
		Description: "guidebuilder link verification cache",
		MaxBytes:    maxBytes,
		History:     1,
	})
	if err != nil {
		return fmt.Errorf("create kv bucket: %w", err)
	}
	c.kv = kv
	slog.Info("created link cache bucket", "bucket", opts.Bucket)
	return nil
}

// Get returns the cached entry for url, or nil when the key is absent.
func (c *NATSCache) Get(ctx context.Context, url string) (*CacheEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	entry, err := c.kv.Get(ctx, cacheKey(url))
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cache entry: %w", err)
	}
	var cached CacheEntry
	if err := json.Unmarshal(entry.Value(), &cached); err != nil {
		return nil, fmt.Errorf("unmarshal cache entry: %w", err)
	}
	return &cached, nil
}

// Set stores an entry keyed by its URL.
func (c *NATSCache) Set(ctx context.Context, entry *CacheEntry) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal cache entry: %w", err)
	}
	if _, err := c.kv.Put(ctx, cacheKey(entry.URL), data); err != nil {
		return fmt.Errorf("put cache entry: %w", err)
	}
	return nil
}

// PublishBrokenLink emits a broken-link event on the configured subject.
// A cache with no subject configured publishes nothing.
func (c *NATSCache) PublishBrokenLink(ctx context.Context, event *BrokenLinkEvent) error {
	if c.subject == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	event.Timestamp = time.Now()
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if _, err := c.js.Publish(ctx, c.subject, data); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}
	slog.Debug("published broken link event", "url", event.URL, "page", event.Page)
	return nil
}

// Close closes the NATS connection.
func (c *NATSCache) Close() error {
	if c.conn != nil {
		c.conn.Close()
	}
	return nil
}

// cacheKey maps a URL onto the KV key charset (NATS keys cannot contain
// slashes or spaces).
func cacheKey(url string) string {
	out := make([]byte, 0, len(url))
	for i := 0; i < len(url); i++ {
		ch := url[i]
		switch {
		case ch >= 'a' && ch <= 'z', ch >= 'A' && ch <= 'Z', ch >= '0' && ch <= '9':
			out = append(out, ch)
		case ch == '-' || ch == '_' || ch == '.':
			out = append(out, ch)
		default:
			out = append(out, fmt.Sprintf("=%02X", ch)...)
		}
	}
	return string(out)
}
