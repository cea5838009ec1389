package ansel

import (
	"log/slog"

	"github.com/fkoehler/ansel/blobstore"
	"github.com/fkoehler/ansel/config"
	"github.com/fkoehler/ansel/facet"
	"github.com/fkoehler/ansel/nav"
	"github.com/fkoehler/ansel/neighbor"
	"github.com/fkoehler/ansel/resource"
	"github.com/fkoehler/ansel/tilecache"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector
	registry         *facet.Registry
	tuning           config.Tuning
	fetcher          tilecache.Fetcher
	store            blobstore.Store
	resources        *resource.Controller
	sink             nav.Sink
	sortKey          SortKey
	neighbors        *neighbor.Graph
}

// Option configures Engine constructor behavior.
type Option func(*options)

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	logger := ansel.NewJSONLogger(slog.LevelInfo)
//	eng, _ := ansel.New(coll, ansel.WithLogger(logger))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector for monitoring
// operations. Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	metrics := &ansel.BasicMetricsCollector{}
//	eng, _ := ansel.New(coll, ansel.WithMetricsCollector(metrics))
//	// ... use eng ...
//	stats := metrics.GetStats()
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		o.metricsCollector = mc
	}
}

// WithRegistry configures the facet dimension registry. If nil is passed,
// facet.DefaultRegistry() is used.
func WithRegistry(reg *facet.Registry) Option {
	return func(o *options) {
		o.registry = reg
	}
}

// WithTuning overrides the default engine tuning. Load one from disk with
// config.Load, or start from config.Default and adjust fields.
func WithTuning(t config.Tuning) Option {
	return func(o *options) {
		o.tuning = t
	}
}

// WithFetcher configures the raw byte source for tiles. Takes precedence
// over WithStore when both are set.
func WithFetcher(f tilecache.Fetcher) Option {
	return func(o *options) {
		o.fetcher = f
	}
}

// WithStore configures a blob store for tile bytes. The engine builds a
// fetcher from it using the collection's locators.
//
// Example:
//
//	store, _ := s3.NewFromDefaultConfig(ctx, "photos", "tiles")
//	eng, _ := ansel.New(coll, ansel.WithStore(store))
func WithStore(store blobstore.Store) Option {
	return func(o *options) {
		o.store = store
	}
}

// WithResources configures fetch concurrency and bandwidth limits.
// If not set, a controller is built from the tuning values.
func WithResources(rc *resource.Controller) Option {
	return func(o *options) {
		o.resources = rc
	}
}

// WithMutationSink configures the receiver of curation intents. The engine
// never mutates collection data itself; it emits intents to the sink.
// Pass nil to discard intents.
func WithMutationSink(sink nav.Sink) Option {
	return func(o *options) {
		o.sink = sink
	}
}

// WithSortKey configures the base ordering of the browsing sequence.
// Defaults to SortSnapshot.
func WithSortKey(key SortKey) Option {
	return func(o *options) {
		o.sortKey = key
	}
}

// WithNeighbors configures precomputed drift links for suggestion-based
// browsing. Build one with neighbor.Build or neighbor.NewStatic.
func WithNeighbors(g *neighbor.Graph) Option {
	return func(o *options) {
		o.neighbors = g
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
		tuning:           config.Default(),
		sink:             nav.NopSink{},
		sortKey:          SortSnapshot,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	if o.logger == nil {
		o.logger = NoopLogger()
	}
	if o.metricsCollector == nil {
		o.metricsCollector = NoopMetricsCollector{}
	}
	if o.sink == nil {
		o.sink = nav.NopSink{}
	}
	if !o.sortKey.Valid() {
		o.sortKey = SortSnapshot
	}
	return o
}
