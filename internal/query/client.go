package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/tair/furniture-storefront/pkg/logger"
	"github.com/tair/furniture-storefront/pkg/metrics"
)

var tracer = otel.Tracer("storefront-query")

// Status is the lifecycle state of a query result
type Status string

const (
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Result is what a query accessor hands to views. Loading carries neither data nor error.
type Result[T any] struct {
	Status Status
	Data   T
	Err    error
}

func (r Result[T]) Loading() bool { return r.Status == StatusLoading }
func (r Result[T]) Ready() bool   { return r.Status == StatusSuccess }

// Loading returns the result of a query whose guard is not yet met
func Loading[T any]() Result[T] {
	return Result[T]{Status: StatusLoading}
}

// Client caches query results and applies invalidation after mutations
type Client struct {
	store   Store
	metrics *metrics.Metrics
	group   singleflight.Group

	// mu guards generation and orders cache writes against invalidation. generation changes
	// on every invalidation so fetches started before it are neither stored nor joined.
	mu         sync.Mutex
	generation uint64
}

// NewClient creates a query client over store
func NewClient(store Store, m *metrics.Metrics) *Client {
	return &Client{store: store, metrics: m}
}

// Fetch returns the cached value of key or runs fn to load it. When enabled is false it
// returns a Loading result without calling fn. Failed loads are not cached or retried.
func Fetch[T any](ctx context.Context, c *Client, key Key, enabled bool, fn func(context.Context) (T, error)) Result[T] {
	if !enabled {
		return Loading[T]()
	}

	ctx, span := tracer.Start(ctx, "query."+key.Name(),
		trace.WithAttributes(attribute.String("query.key", key.String())),
	)
	defer span.End()

	if data, ok, err := c.store.Get(ctx, key); err != nil {
		logger.Warn(ctx).Err(err).Str("key", key.String()).Msg("Cache read failed")
	} else if ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			c.metrics.CacheHit(key.Name())
			span.SetAttributes(attribute.Bool("query.cache_hit", true))
			return Result[T]{Status: StatusSuccess, Data: v}
		}
		logger.Warn(ctx).Str("key", key.String()).Msg("Dropping undecodable cache entry")
	}
	c.metrics.CacheMiss(key.Name())
	span.SetAttributes(attribute.Bool("query.cache_hit", false))

	gen := c.currentGeneration()
	out, err, _ := c.group.Do(key.Encode()+"#"+strconv.FormatUint(gen, 10), func() (any, error) {
		start := time.Now()
		v, err := fn(ctx)
		c.metrics.ObserveQuery(key.Name(), time.Since(start), err)
		if err != nil {
			return nil, err
		}

		if data, err := json.Marshal(v); err == nil {
			c.storeIfCurrent(ctx, gen, key, data)
		}
		return v, nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		logger.Debug(ctx).Err(err).Str("key", key.String()).Msg("Query failed")
		return Result[T]{Status: StatusError, Err: err}
	}

	return Result[T]{Status: StatusSuccess, Data: out.(T)}
}

// Mutate runs fn and, only when it succeeds, invalidates the keys the table lists for kind
func (c *Client) Mutate(ctx context.Context, kind MutationKind, subject string, fn func(context.Context) error) error {
	ctx, span := tracer.Start(ctx, "mutation."+string(kind),
		trace.WithAttributes(attribute.String("mutation.subject", subject)),
	)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	c.metrics.ObserveMutation(string(kind), time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	c.Invalidate(ctx, KeysFor(kind, subject)...)
	return nil
}

// Invalidate drops keys and everything under them. Missing keys are ignored.
func (c *Client) Invalidate(ctx context.Context, keys ...Key) {
	if len(keys) == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	for _, k := range keys {
		if err := c.store.Delete(ctx, k); err != nil {
			logger.Warn(ctx).Err(err).Str("key", k.String()).Msg("Cache invalidation failed")
		}
	}
}

// Clear drops every cached result
func (c *Client) Clear(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	if err := c.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear query cache: %w", err)
	}
	return nil
}

func (c *Client) currentGeneration() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generation
}

// storeIfCurrent writes data only when no invalidation happened since gen was read
func (c *Client) storeIfCurrent(ctx context.Context, gen uint64, key Key, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		return
	}
	if err := c.store.Set(ctx, key, data); err != nil {
		logger.Warn(ctx).Err(err).Str("key", key.String()).Msg("Cache write failed")
	}
}
