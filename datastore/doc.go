/*
Package datastore defines the persistence interface used by the tracking and
search-index stores.

DataStore[T] offers keyed reads and writes plus queries and streams over a
single table:

	type DataStore[T any] interface {
	    GetOne(ctx context.Context, key string) (*T, error)
	    Put(ctx context.Context, entity T) error
	    Create(ctx context.Context, entity T) error
	    UpdateWithCondition(ctx context.Context, keyInput any, updates map[string]any, condition string) error
	    Query(ctx context.Context, params *storagemodels.QueryParams) ([]any, error)
	    Stream(ctx context.Context, params *storagemodels.QueryParams, opts ...storagemodels.StreamOption) <-chan storagemodels.StreamResult[T]
	    Delete(ctx context.Context, key string) error
	}

Implementations:
  - ddb: DynamoDB single-table store
  - mock: in-memory store for tests
  - cache: read-through LRU decorator over another DataStore
*/
package datastore
