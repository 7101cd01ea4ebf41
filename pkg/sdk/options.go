package dlf

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	addrs    []string
	password string

	catalogPath   string
	encryptionKey string
	linkBaseURL   string
	linkPath      string

	keyPrefix       string
	searchTimeout   time.Duration
	fulltextMaxHits int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a Redis instance with the search module.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithCatalog sets the path of the SQLite catalog database.
// The schema is created on first use.
func WithCatalog(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.catalogPath = path
	})
}

// WithEncryptionKey sets the secret settings tokens are sealed with.
func WithEncryptionKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.encryptionKey = key
	})
}

// WithLinks sets the absolute base URL and path of the viewer deep links.
func WithLinks(baseURL, path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.linkBaseURL = baseURL
		c.linkPath = path
	})
}

// WithKeyPrefix sets the search store key prefix. Default: "dlf:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithSearchTimeout bounds each search. Default: 3s.
func WithSearchTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.searchTimeout = d
	})
}

// WithFulltextMaxHits caps the page hits grouped per fulltext search. Default: 1000.
func WithFulltextMaxHits(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.fulltextMaxHits = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
