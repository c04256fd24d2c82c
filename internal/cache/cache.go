package cache

import (
	"container/list"
	"fmt"
	"strings"
	"sync"
)

// Recents remembers which paper pages were previewed lately, so stats
// recording can be skipped for a page that is already hot. Bounded FIFO
// keyed by paper id and page number.
type Recents struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	keys     map[string]*list.Element
}

// New creates a cache remembering up to capacity pages.
func New(capacity int) *Recents {
	if capacity <= 0 {
		capacity = 1
	}
	return &Recents{
		capacity: capacity,
		order:    list.New(),
		keys:     make(map[string]*list.Element),
	}
}

func pageKey(paperID string, page int64) string {
	return fmt.Sprintf("%s:%d", paperID, page)
}

// Touch marks a page as recently previewed and reports whether it was
// already hot. The oldest entry is evicted once capacity is reached.
func (c *Recents) Touch(paperID string, page int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := pageKey(paperID, page)
	if _, ok := c.keys[key]; ok {
		return true
	}

	c.keys[key] = c.order.PushFront(key)
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.keys, oldest.Value.(string))
	}
	return false
}

// Forget drops every remembered page of a paper, e.g. after the paper
// was deleted or its file changed.
func (c *Recents) Forget(paperID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := paperID + ":"
	for el := c.order.Front(); el != nil; {
		next := el.Next()
		if strings.HasPrefix(el.Value.(string), prefix) {
			c.order.Remove(el)
			delete(c.keys, el.Value.(string))
		}
		el = next
	}
}

// Len reports the number of remembered pages.
func (c *Recents) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
