package battle

import (
	"container/list"
	"sync"

	"github.com/tunearena/gateway/internal/arena"
)

// Cache is an LRU map of recent battles keyed by uuid. Size 0 means
// unbounded; evicted battles remain reachable through the metadata
// bucket.
type Cache struct {
	mu      sync.Mutex
	size    int
	order   *list.List
	entries map[string]*list.Element
}

type cacheEntry struct {
	uuid   string
	battle arena.Battle
}

func NewCache(size int) *Cache {
	return &Cache{
		size:    size,
		order:   list.New(),
		entries: make(map[string]*list.Element),
	}
}

func (c *Cache) Get(uuid string) (arena.Battle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[uuid]
	if !ok {
		return arena.Battle{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*cacheEntry).battle, true
}

func (c *Cache) Put(b arena.Battle) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[b.UUID]; ok {
		el.Value.(*cacheEntry).battle = b
		c.order.MoveToFront(el)
		return
	}

	el := c.order.PushFront(&cacheEntry{uuid: b.UUID, battle: b})
	c.entries[b.UUID] = el

	if c.size > 0 && c.order.Len() > c.size {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).uuid)
	}
}

func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
