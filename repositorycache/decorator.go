package repositorycache

import (
	"context"
	"fmt"
	"sync"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-memoize/cache"
	"github.com/goliatone/go-memoize/memoize"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// Interface assertion to ensure CachedRepository implements Repository[T]
var _ repository.Repository[any] = (*CachedRepository[any])(nil)

// listResult wraps the tuple result from List operations for caching
type listResult[T any] struct {
	Records []T `json:"records" msgpack:"records"`
	Total   int `json:"total" msgpack:"total"`
}

// CachedRepository decorates a base repository with memoized reads
type CachedRepository[T any] struct {
	base     repository.Repository[T]
	registry *cacheRegistry

	get             func(ctx context.Context, criteria []repository.SelectCriteria) (T, error)
	getByID         func(ctx context.Context, id string, criteria []repository.SelectCriteria) (T, error)
	getByIdentifier func(ctx context.Context, identifier string, criteria []repository.SelectCriteria) (T, error)
	list            func(ctx context.Context, criteria []repository.SelectCriteria) (listResult[T], error)
	count           func(ctx context.Context, criteria []repository.SelectCriteria) (int, error)
}

// New creates a CachedRepository that memoizes the read methods of base.
// Every cache created for it must implement cache.Clearer so writes can drop
// stale reads.
func New[T any](base repository.Repository[T], opts ...memoize.Option) (*CachedRepository[T], error) {
	if base == nil {
		return nil, goerrors.New("base repository is required", goerrors.CategoryBadInput)
	}

	var cfg memoize.Config
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.DefaultFactory()
	}
	if cfg.Serializer == nil {
		cfg.Serializer = cache.NewDefaultSerializer()
	}

	c := &CachedRepository[T]{
		base:     base,
		registry: &cacheRegistry{factory: cfg.Cache},
	}

	var err error
	if c.get, err = memoizeRead(c, "Get", cfg.Serializer, opts, c.fetchGet); err != nil {
		return nil, err
	}
	if c.getByID, err = memoizeRead(c, "GetByID", cfg.Serializer, opts, c.fetchGetByID); err != nil {
		return nil, err
	}
	if c.getByIdentifier, err = memoizeRead(c, "GetByIdentifier", cfg.Serializer, opts, c.fetchGetByIdentifier); err != nil {
		return nil, err
	}
	if c.list, err = memoizeRead(c, "List", cfg.Serializer, opts, c.fetchList); err != nil {
		return nil, err
	}
	if c.count, err = memoizeRead(c, "Count", cfg.Serializer, opts, c.fetchCount); err != nil {
		return nil, err
	}
	return c, nil
}

func memoizeRead[T any, F any](c *CachedRepository[T], method string, s cache.Serializer, opts []memoize.Option, fn F) (F, error) {
	opts = append(opts[:len(opts):len(opts)],
		memoize.WithCache(c.registry),
		memoize.WithSerializer(prefixed(method, s)),
		memoize.WithStrategy(memoize.VariadicStrategy),
	)
	out, err := memoize.New(fn, opts...)
	if err != nil {
		return out, goerrors.Wrap(err, goerrors.CategoryInternal, fmt.Sprintf("memoize %s", method))
	}
	return out, nil
}

// prefixed namespaces keys by repository method, keeping reads apart when
// every method shares one cache.
func prefixed(method string, s cache.Serializer) cache.Serializer {
	return cache.SerializerFunc(func(args []any) string {
		return method + cache.KeySeparator + s.Serialize(args)
	})
}

// cacheRegistry records every cache handed to a memoized read.
type cacheRegistry struct {
	factory cache.Factory

	mu     sync.Mutex
	caches []cache.Clearer
}

func (r *cacheRegistry) Create() (cache.Cache, error) {
	c, err := r.factory.Create()
	if err != nil {
		return nil, err
	}
	clearer, ok := c.(cache.Clearer)
	if !ok {
		return nil, goerrors.New(fmt.Sprintf("cache %T does not support Clear", c), goerrors.CategoryBadInput)
	}

	r.mu.Lock()
	r.caches = append(r.caches, clearer)
	r.mu.Unlock()
	return c, nil
}

func (r *cacheRegistry) clear(ctx context.Context) error {
	r.mu.Lock()
	caches := append([]cache.Clearer(nil), r.caches...)
	r.mu.Unlock()

	for _, c := range caches {
		if err := c.Clear(ctx); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryExternal, "clear cached reads")
		}
	}
	return nil
}

func (c *CachedRepository[T]) fetchGet(ctx context.Context, criteria []repository.SelectCriteria) (T, error) {
	return c.base.Get(ctx, criteria...)
}

func (c *CachedRepository[T]) fetchGetByID(ctx context.Context, id string, criteria []repository.SelectCriteria) (T, error) {
	return c.base.GetByID(ctx, id, criteria...)
}

func (c *CachedRepository[T]) fetchGetByIdentifier(ctx context.Context, identifier string, criteria []repository.SelectCriteria) (T, error) {
	return c.base.GetByIdentifier(ctx, identifier, criteria...)
}

func (c *CachedRepository[T]) fetchList(ctx context.Context, criteria []repository.SelectCriteria) (listResult[T], error) {
	records, total, err := c.base.List(ctx, criteria...)
	return listResult[T]{Records: records, Total: total}, err
}

func (c *CachedRepository[T]) fetchCount(ctx context.Context, criteria []repository.SelectCriteria) (int, error) {
	return c.base.Count(ctx, criteria...)
}

// Invalidate drops every cached read.
func (c *CachedRepository[T]) Invalidate(ctx context.Context) error {
	return c.registry.clear(ctx)
}

// afterWrite clears cached reads once a write succeeded.
func (c *CachedRepository[T]) afterWrite(ctx context.Context, err error) error {
	if err != nil {
		return err
	}
	return c.registry.clear(ctx)
}

// Get retrieves a single record using the provided criteria, with caching
func (c *CachedRepository[T]) Get(ctx context.Context, criteria ...repository.SelectCriteria) (T, error) {
	return c.get(ctx, criteria)
}

// GetByID retrieves a record by ID with optional criteria, with caching
func (c *CachedRepository[T]) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (T, error) {
	return c.getByID(ctx, id, criteria)
}

// List retrieves multiple records using the provided criteria, with caching
func (c *CachedRepository[T]) List(ctx context.Context, criteria ...repository.SelectCriteria) ([]T, int, error) {
	res, err := c.list(ctx, criteria)
	if err != nil {
		return nil, 0, err
	}
	return res.Records, res.Total, nil
}

// Count returns the number of records matching the criteria, with caching
func (c *CachedRepository[T]) Count(ctx context.Context, criteria ...repository.SelectCriteria) (int, error) {
	return c.count(ctx, criteria)
}

// GetByIdentifier retrieves a record by identifier with optional criteria, with caching
func (c *CachedRepository[T]) GetByIdentifier(ctx context.Context, identifier string, criteria ...repository.SelectCriteria) (T, error) {
	return c.getByIdentifier(ctx, identifier, criteria)
}

// Create creates a new record
func (c *CachedRepository[T]) Create(ctx context.Context, record T, criteria ...repository.InsertCriteria) (T, error) {
	result, err := c.base.Create(ctx, record, criteria...)
	return result, c.afterWrite(ctx, err)
}

// CreateTx creates a new record within a transaction
func (c *CachedRepository[T]) CreateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.InsertCriteria) (T, error) {
	result, err := c.base.CreateTx(ctx, tx, record, criteria...)
	return result, c.afterWrite(ctx, err)
}

// CreateMany creates multiple records
func (c *CachedRepository[T]) CreateMany(ctx context.Context, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	result, err := c.base.CreateMany(ctx, records, criteria...)
	return result, c.afterWrite(ctx, err)
}

// CreateManyTx creates multiple records within a transaction
func (c *CachedRepository[T]) CreateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.InsertCriteria) ([]T, error) {
	result, err := c.base.CreateManyTx(ctx, tx, records, criteria...)
	return result, c.afterWrite(ctx, err)
}

// GetOrCreate gets a record or creates it if it doesn't exist
func (c *CachedRepository[T]) GetOrCreate(ctx context.Context, record T) (T, error) {
	result, err := c.base.GetOrCreate(ctx, record)
	return result, c.afterWrite(ctx, err)
}

// GetOrCreateTx gets a record or creates it if it doesn't exist within a transaction
func (c *CachedRepository[T]) GetOrCreateTx(ctx context.Context, tx bun.IDB, record T) (T, error) {
	result, err := c.base.GetOrCreateTx(ctx, tx, record)
	return result, c.afterWrite(ctx, err)
}

// Update updates a record
func (c *CachedRepository[T]) Update(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := c.base.Update(ctx, record, criteria...)
	return result, c.afterWrite(ctx, err)
}

// UpdateTx updates a record within a transaction
func (c *CachedRepository[T]) UpdateTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := c.base.UpdateTx(ctx, tx, record, criteria...)
	return result, c.afterWrite(ctx, err)
}

// UpdateMany updates multiple records
func (c *CachedRepository[T]) UpdateMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := c.base.UpdateMany(ctx, records, criteria...)
	return result, c.afterWrite(ctx, err)
}

// UpdateManyTx updates multiple records within a transaction
func (c *CachedRepository[T]) UpdateManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := c.base.UpdateManyTx(ctx, tx, records, criteria...)
	return result, c.afterWrite(ctx, err)
}

// Upsert inserts or updates a record
func (c *CachedRepository[T]) Upsert(ctx context.Context, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := c.base.Upsert(ctx, record, criteria...)
	return result, c.afterWrite(ctx, err)
}

// UpsertTx inserts or updates a record within a transaction
func (c *CachedRepository[T]) UpsertTx(ctx context.Context, tx bun.IDB, record T, criteria ...repository.UpdateCriteria) (T, error) {
	result, err := c.base.UpsertTx(ctx, tx, record, criteria...)
	return result, c.afterWrite(ctx, err)
}

// UpsertMany inserts or updates multiple records
func (c *CachedRepository[T]) UpsertMany(ctx context.Context, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := c.base.UpsertMany(ctx, records, criteria...)
	return result, c.afterWrite(ctx, err)
}

// UpsertManyTx inserts or updates multiple records within a transaction
func (c *CachedRepository[T]) UpsertManyTx(ctx context.Context, tx bun.IDB, records []T, criteria ...repository.UpdateCriteria) ([]T, error) {
	result, err := c.base.UpsertManyTx(ctx, tx, records, criteria...)
	return result, c.afterWrite(ctx, err)
}

// Delete deletes a record
func (c *CachedRepository[T]) Delete(ctx context.Context, record T) error {
	return c.afterWrite(ctx, c.base.Delete(ctx, record))
}

// DeleteTx deletes a record within a transaction
func (c *CachedRepository[T]) DeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	return c.afterWrite(ctx, c.base.DeleteTx(ctx, tx, record))
}

// DeleteMany deletes multiple records based on criteria
func (c *CachedRepository[T]) DeleteMany(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	return c.afterWrite(ctx, c.base.DeleteMany(ctx, criteria...))
}

// DeleteManyTx deletes multiple records based on criteria within a transaction
func (c *CachedRepository[T]) DeleteManyTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	return c.afterWrite(ctx, c.base.DeleteManyTx(ctx, tx, criteria...))
}

// DeleteWhere deletes records based on criteria
func (c *CachedRepository[T]) DeleteWhere(ctx context.Context, criteria ...repository.DeleteCriteria) error {
	return c.afterWrite(ctx, c.base.DeleteWhere(ctx, criteria...))
}

// DeleteWhereTx deletes records based on criteria within a transaction
func (c *CachedRepository[T]) DeleteWhereTx(ctx context.Context, tx bun.IDB, criteria ...repository.DeleteCriteria) error {
	return c.afterWrite(ctx, c.base.DeleteWhereTx(ctx, tx, criteria...))
}

// ForceDelete force deletes a record (bypassing soft delete)
func (c *CachedRepository[T]) ForceDelete(ctx context.Context, record T) error {
	return c.afterWrite(ctx, c.base.ForceDelete(ctx, record))
}

// ForceDeleteTx force deletes a record within a transaction (bypassing soft delete)
func (c *CachedRepository[T]) ForceDeleteTx(ctx context.Context, tx bun.IDB, record T) error {
	return c.afterWrite(ctx, c.base.ForceDeleteTx(ctx, tx, record))
}

// GetTx bypasses the cache, reads inside a transaction must see its writes.
func (c *CachedRepository[T]) GetTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (T, error) {
	return c.base.GetTx(ctx, tx, criteria...)
}

// GetByIDTx retrieves a record by ID within a transaction
func (c *CachedRepository[T]) GetByIDTx(ctx context.Context, tx bun.IDB, id string, criteria ...repository.SelectCriteria) (T, error) {
	return c.base.GetByIDTx(ctx, tx, id, criteria...)
}

// ListTx retrieves multiple records within a transaction
func (c *CachedRepository[T]) ListTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) ([]T, int, error) {
	return c.base.ListTx(ctx, tx, criteria...)
}

// CountTx returns the number of records matching the criteria within a transaction
func (c *CachedRepository[T]) CountTx(ctx context.Context, tx bun.IDB, criteria ...repository.SelectCriteria) (int, error) {
	return c.base.CountTx(ctx, tx, criteria...)
}

// GetByIdentifierTx retrieves a record by identifier within a transaction
func (c *CachedRepository[T]) GetByIdentifierTx(ctx context.Context, tx bun.IDB, identifier string, criteria ...repository.SelectCriteria) (T, error) {
	return c.base.GetByIdentifierTx(ctx, tx, identifier, criteria...)
}

// Raw executes a raw SQL query, results are never cached
func (c *CachedRepository[T]) Raw(ctx context.Context, sql string, args ...any) ([]T, error) {
	return c.base.Raw(ctx, sql, args...)
}

// RawTx executes a raw SQL query within a transaction
func (c *CachedRepository[T]) RawTx(ctx context.Context, tx bun.IDB, sql string, args ...any) ([]T, error) {
	return c.base.RawTx(ctx, tx, sql, args...)
}

// Handlers returns the model handlers from the base repository
func (c *CachedRepository[T]) Handlers() repository.ModelHandlers[T] {
	return c.base.Handlers()
}
