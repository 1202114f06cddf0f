// Package memstore is an in-process wide-column store.
//
// Rows are spread over shards by an FNV-1a hash of the row key and every shard has its own
// lock, so single-row reads and writes only contend within one shard. Each row is applied
// atomically under its shard lock.
//
// Prefix and regex scans still have to visit many rows. A separate ordered key index (a
// B-tree) lets prefix scans seek directly to the first candidate and return rows in key order.
package memstore

import (
	"fmt"
	"hash/fnv"
	"strings"
	"sync"

	"github.com/google/btree"
	"github.com/litetable/litetable-mapper/internal/litetable"
)

const keyIndexDegree = 32

// shard is a manager for a single shard of in-memory litetable.Data.
type shard struct {
	data  litetable.Data
	mutex sync.RWMutex
}

// initializeDataShards creates count empty shards.
func initializeDataShards(count int) ([]*shard, error) {
	if count <= 0 {
		return nil, fmt.Errorf("shard count must be greater than 0")
	}

	shards := make([]*shard, count)
	for i := range shards {
		shards[i] = &shard{
			data: make(litetable.Data),
		}
	}
	return shards, nil
}

// getShardIndex determines which shard a particular row key belongs to.
// It uses a consistent hashing approach to distribute keys evenly across shards.
func (m *Manager) getShardIndex(rowKey string) int {
	if m.shardCount <= 0 {
		return 0
	}

	// Use FNV-1a hash algorithm for distributing keys
	h := fnv.New32a()
	_, _ = h.Write([]byte(rowKey))
	hash := h.Sum32()

	// Modulo to get shard index within range
	return int(hash % uint32(m.shardCount))
}

func (m *Manager) shardFor(rowKey string) *shard {
	return m.shardMap[m.getShardIndex(rowKey)]
}

// keyIndex is the ordered set of live row keys.
type keyIndex struct {
	mutex sync.RWMutex
	tree  *btree.BTreeG[string]
}

func newKeyIndex() *keyIndex {
	return &keyIndex{
		tree: btree.NewOrderedG[string](keyIndexDegree),
	}
}

func (k *keyIndex) add(rowKey string) {
	k.mutex.Lock()
	defer k.mutex.Unlock()
	k.tree.ReplaceOrInsert(rowKey)
}

func (k *keyIndex) remove(rowKey string) {
	k.mutex.Lock()
	defer k.mutex.Unlock()
	k.tree.Delete(rowKey)
}

func (k *keyIndex) len() int {
	k.mutex.RLock()
	defer k.mutex.RUnlock()
	return k.tree.Len()
}

// keys returns the row keys starting with prefix, in order. An empty prefix returns all keys.
func (k *keyIndex) keys(prefix string) []string {
	k.mutex.RLock()
	defer k.mutex.RUnlock()

	var out []string
	collect := func(key string) bool {
		if !strings.HasPrefix(key, prefix) {
			return false
		}
		out = append(out, key)
		return true
	}
	if prefix == "" {
		k.tree.Ascend(collect)
	} else {
		k.tree.AscendGreaterOrEqual(prefix, collect)
	}
	return out
}
