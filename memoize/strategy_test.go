package memoize

import (
	"context"
	"testing"

	"github.com/goliatone/go-memoize/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest/observer"
)

func strategyName(t *testing.T, logs *observer.ObservedLogs) string {
	t.Helper()
	entries := logs.FilterMessage("memoize miss").All()
	require.NotEmpty(t, entries, "expected a miss trace")
	name, _ := entries[0].ContextMap()["strategy"].(string)
	return name
}

func TestAuto_Selection(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		call func(opts ...Option)
		want string
	}{
		{
			name: "single argument, sync cache",
			call: func(opts ...Option) { Memoize(func(x int) int { return x }, opts...)(1) },
			want: "monadic-sync",
		},
		{
			name: "context does not count toward arity",
			call: func(opts ...Option) {
				Memoize(func(ctx context.Context, x int) int { return x }, opts...)(ctx, 1)
			},
			want: "monadic-sync",
		},
		{
			name: "two arguments",
			call: func(opts ...Option) { Memoize(func(a, b int) int { return a + b }, opts...)(1, 2) },
			want: "variadic-sync",
		},
		{
			name: "zero arguments",
			call: func(opts ...Option) { Memoize(func() int { return 1 }, opts...)() },
			want: "variadic-sync",
		},
		{
			name: "variadic parameter",
			call: func(opts ...Option) { Memoize(func(xs ...int) int { return len(xs) }, opts...)(1) },
			want: "variadic-sync",
		},
		{
			name: "future result",
			call: func(opts ...Option) {
				_, _ = Memoize(func(x int) *Future[int] { return Resolved(x) }, opts...)(1).Get(ctx)
			},
			want: "monadic-async",
		},
		{
			name: "async cache",
			call: func(opts ...Option) {
				opts = append(opts, WithSharedCache(cache.Async(cache.NewMapCache())))
				Memoize(func(a, b int) int { return a + b }, opts...)(1, 2)
			},
			want: "variadic-async",
		},
		{
			name: "forced monadic",
			call: func(opts ...Option) { Monadic(func(a, b int) int { return a + b }, opts...)(1, 2) },
			want: "monadic-sync",
		},
		{
			name: "forced variadic",
			call: func(opts ...Option) { Variadic(func(x int) int { return x }, opts...)(1) },
			want: "variadic-sync",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, logs := observed()
			tt.call(WithDebug(true), WithLogger(logger))
			assert.Equal(t, tt.want, strategyName(t, logs))
		})
	}
}

func TestMonadic_KeysOnFirstArgument(t *testing.T) {
	calls := 0
	add := Monadic(func(a, b int) int {
		calls++
		return a + b
	})

	assert.Equal(t, 3, add(1, 2))
	assert.Equal(t, 3, add(1, 5), "second argument is not part of the key")
	assert.Equal(t, 1, calls)
}

func TestMonadic_ZeroArguments(t *testing.T) {
	shared := cache.NewMapCache()
	calls := 0
	answer := Monadic(func() int {
		calls++
		return 42
	}, WithSharedCache(shared))

	assert.Equal(t, 42, answer())
	assert.Equal(t, 42, answer())
	assert.Equal(t, 1, calls)

	v, found, _ := shared.Get(context.Background(), nil)
	assert.True(t, found, "zero argument calls use the nil key")
	assert.Equal(t, 42, v)
}

func TestVariadic_SerializesSingleArgument(t *testing.T) {
	shared := cache.NewMapCache()
	Variadic(func(x int) int { return x }, WithSharedCache(shared))(7)

	_, found, _ := shared.Get(context.Background(), "args[1]::7")
	assert.True(t, found)
}

func TestDebug_Traces(t *testing.T) {
	logger, logs := observed()
	double := Memoize(func(x int) int { return x * 2 }, WithDebug(true), WithLogger(logger))

	double(1)
	double(1)

	require.Equal(t, 1, logs.FilterMessage("memoize miss").Len())
	require.Equal(t, 1, logs.FilterMessage("memoize hit").Len())

	hit := logs.FilterMessage("memoize hit").All()[0]
	assert.Equal(t, int64(1), hit.ContextMap()["key"])
	assert.Equal(t, "monadic-sync", hit.ContextMap()["strategy"])
}

func TestDebug_Disabled(t *testing.T) {
	logger, logs := observed()
	double := Memoize(func(x int) int { return x * 2 }, WithLogger(logger))

	double(1)
	double(1)
	assert.Equal(t, 0, logs.Len())
}
