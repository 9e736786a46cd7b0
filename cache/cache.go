// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package cache

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/go-crypt/x/blake2b"
)

// Cache is a TTL-bounded string cache backed by ristretto.
type Cache struct {
	inner *ristretto.Cache[string, string]
	ttl   time.Duration
}

// New creates a cache holding up to maxEntries values, each expiring after ttl.
func New(maxEntries int64, ttl time.Duration) (*Cache, error) {
	if maxEntries < 1 {
		return nil, ErrInvalidCapacity
	}
	if ttl <= 0 {
		return nil, ErrInvalidTTL
	}

	inner, err := ristretto.NewCache(&ristretto.Config[string, string]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}

	return &Cache{inner: inner, ttl: ttl}, nil
}

// Get returns the cached value for key and whether it was present.
func (c *Cache) Get(key string) (string, bool) {
	return c.inner.Get(key)
}

// Set stores value under key with the cache's TTL. The write is synchronous:
// a following Get for the same key observes the value.
func (c *Cache) Set(key, value string) {
	c.inner.SetWithTTL(key, value, 1, c.ttl)
	c.inner.Wait()
}

// Close releases the cache's resources.
func (c *Cache) Close() {
	c.inner.Close()
}

// Key derives a cache key from the given parts. Parts are pipe-joined before
// hashing so that ("a", "bc") and ("ab", "c") produce distinct keys.
func Key(parts ...string) string {
	h, _ := blake2b.New(16, nil) // keys are not secret, 128 bits is plenty
	h.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h.Sum(nil))
}
