/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/suparena/cardreg/datastore"
	"github.com/suparena/cardreg/datastore/cache"
	"github.com/suparena/cardreg/datastore/mock"
	"github.com/suparena/cardreg/errors"
	"github.com/suparena/cardreg/storagemodels"
)

type branch struct {
	Code string `dynamodbav:"Code"`
	Name string `dynamodbav:"Name"`
}

var _ datastore.DataStore[branch] = (*cache.DataStore[branch])(nil)

func branchKey(b branch) string { return b.Code }

func setup(t *testing.T, opts ...cache.Option[branch]) (*mock.DataStore[branch], *cache.DataStore[branch]) {
	t.Helper()
	backing := mock.New[branch]().WithGetKeyFunc(branchKey)
	cached, err := cache.New[branch](backing, 8, 0, opts...)
	require.NoError(t, err)
	return backing, cached
}

func TestNewValidation(t *testing.T) {
	_, err := cache.New[branch](nil, 8, 0)
	assert.Error(t, err)

	_, err = cache.New[branch](mock.New[branch](), 0, 0)
	assert.Error(t, err)
}

func TestGetOneReadsThrough(t *testing.T) {
	ctx := context.Background()
	backing, cached := setup(t)
	backing.SetData(map[string]branch{"main": {Code: "main", Name: "Main Library"}})

	got, err := cached.GetOne(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "Main Library", got.Name)
	assert.Equal(t, 1, cached.Len())

	// A change behind the cache's back is not observed until eviction.
	backing.SetData(map[string]branch{"main": {Code: "main", Name: "Renamed"}})
	got, err = cached.GetOne(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "Main Library", got.Name)

	got.Name = "mutated"
	again, err := cached.GetOne(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "Main Library", again.Name)
}

func TestNotFoundIsNotCached(t *testing.T) {
	ctx := context.Background()
	backing, cached := setup(t)

	_, err := cached.GetOne(ctx, "east")
	assert.True(t, errors.IsNotFound(err))
	assert.Equal(t, 0, cached.Len())

	require.NoError(t, backing.Put(ctx, branch{Code: "east", Name: "East"}))
	got, err := cached.GetOne(ctx, "east")
	require.NoError(t, err)
	assert.Equal(t, "East", got.Name)
}

func TestWritesInvalidate(t *testing.T) {
	ctx := context.Background()

	t.Run("put with key func evicts one entry", func(t *testing.T) {
		backing, cached := setup(t, cache.WithKeyFunc(branchKey))
		backing.SetData(map[string]branch{
			"main": {Code: "main", Name: "Main"},
			"east": {Code: "east", Name: "East"},
		})
		_, _ = cached.GetOne(ctx, "main")
		_, _ = cached.GetOne(ctx, "east")

		require.NoError(t, cached.Put(ctx, branch{Code: "main", Name: "Main Street"}))
		assert.Equal(t, 1, cached.Len())

		got, err := cached.GetOne(ctx, "main")
		require.NoError(t, err)
		assert.Equal(t, "Main Street", got.Name)
	})

	t.Run("put without key func purges", func(t *testing.T) {
		backing, cached := setup(t)
		backing.SetData(map[string]branch{"main": {Code: "main"}, "east": {Code: "east"}})
		_, _ = cached.GetOne(ctx, "main")
		_, _ = cached.GetOne(ctx, "east")

		require.NoError(t, cached.Put(ctx, branch{Code: "west"}))
		assert.Equal(t, 0, cached.Len())
	})

	t.Run("failed create keeps entries", func(t *testing.T) {
		backing, cached := setup(t)
		backing.SetData(map[string]branch{"main": {Code: "main"}})
		_, _ = cached.GetOne(ctx, "main")

		err := cached.Create(ctx, branch{Code: "main"})
		assert.True(t, errors.IsAlreadyExists(err))
		assert.Equal(t, 1, cached.Len())
	})

	t.Run("update and delete evict by key", func(t *testing.T) {
		backing, cached := setup(t)
		backing.SetData(map[string]branch{"main": {Code: "main", Name: "Main"}})
		_, _ = cached.GetOne(ctx, "main")

		require.NoError(t, cached.UpdateWithCondition(ctx, "main", map[string]any{"Name": "Central"}, ""))
		got, err := cached.GetOne(ctx, "main")
		require.NoError(t, err)
		assert.Equal(t, "Central", got.Name)

		require.NoError(t, cached.Delete(ctx, "main"))
		_, err = cached.GetOne(ctx, "main")
		assert.True(t, errors.IsNotFound(err))
	})
}

func TestEntriesExpire(t *testing.T) {
	ctx := context.Background()
	backing := mock.New[branch]().WithGetKeyFunc(branchKey)
	backing.SetData(map[string]branch{"main": {Code: "main", Name: "Main"}})

	cached, err := cache.New[branch](backing, 8, 20*time.Millisecond)
	require.NoError(t, err)

	_, err = cached.GetOne(ctx, "main")
	require.NoError(t, err)
	backing.SetData(map[string]branch{"main": {Code: "main", Name: "Renamed"}})

	assert.Eventually(t, func() bool {
		got, err := cached.GetOne(ctx, "main")
		return err == nil && got.Name == "Renamed"
	}, time.Second, 10*time.Millisecond)
}

func TestQueryAndStreamPassThrough(t *testing.T) {
	ctx := context.Background()
	backing, cached := setup(t)
	backing.SetData(map[string]branch{"a": {Code: "a"}, "b": {Code: "b"}})

	results, err := cached.Query(ctx, &storagemodels.QueryParams{})
	require.NoError(t, err)
	assert.Len(t, results, 2)

	n := 0
	for r := range cached.Stream(ctx, &storagemodels.QueryParams{}) {
		require.NoError(t, r.Error)
		n++
	}
	assert.Equal(t, 2, n)
	assert.Equal(t, 0, cached.Len())
}
