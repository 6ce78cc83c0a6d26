package cache

import (
	"context"
	"time"
)

// NullCache stores nothing; every Get is a miss. [Open] returns it when
// cache.enabled is false or cache.driver is "null", and the client falls
// back to it for a revision whose redis or mongo server is unreachable.
type NullCache struct{}

// NewNullCache returns an empty [NullCache].
func NewNullCache() *NullCache { return &NullCache{} }

func (*NullCache) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (*NullCache) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (*NullCache) Delete(context.Context, string) error                     { return nil }
func (*NullCache) Clear(context.Context) error                              { return nil }
func (*NullCache) Close() error                                             { return nil }

var _ Cache = (*NullCache)(nil)
