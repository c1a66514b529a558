package bramble

import "container/list"

// DefaultMeasureCacheSize bounds the measurement cache. Conversation titles
// repeat heavily across renders (only drags and edits change anything), so a
// few hundred entries covers even large trees.
const DefaultMeasureCacheSize = 512

type measureKey struct {
	font Font
	text string
}

type measurement struct {
	key  measureKey
	w, h float64
}

// MeasureCache memoizes rendered text dimensions per (font, string), evicting
// the least recently used entry once full. One cache is shared by layout
// sizing and reconciliation for the life of the Graph; it is never torn down.
//
// Font values are compared as map keys, so implementations must be comparable
// (pointers and plain structs both are). No locking: the engine is
// single-goroutine by design.
type MeasureCache struct {
	capacity int
	ll       *list.List
	items    map[measureKey]*list.Element
}

// NewMeasureCache creates a cache holding up to capacity entries.
// A non-positive capacity gets DefaultMeasureCacheSize.
func NewMeasureCache(capacity int) *MeasureCache {
	if capacity <= 0 {
		capacity = DefaultMeasureCacheSize
	}
	return &MeasureCache{
		capacity: capacity,
		ll:       list.New(),
		items:    make(map[measureKey]*list.Element, capacity),
	}
}

// Measure returns the rendered dimensions of s in f, memoized. A nil font
// means no measurement context is available; the fixed fallback title size is
// returned so callers still produce the default box rather than failing.
func (c *MeasureCache) Measure(f Font, s string) (w, h float64) {
	if f == nil {
		return fallbackTitleWidth, fallbackTitleHeight
	}

	k := measureKey{font: f, text: s}
	if el, ok := c.items[k]; ok {
		c.ll.MoveToFront(el)
		m := el.Value.(*measurement)
		return m.w, m.h
	}

	w, h = f.MeasureString(s)
	el := c.ll.PushFront(&measurement{key: k, w: w, h: h})
	c.items[k] = el
	if c.ll.Len() > c.capacity {
		c.evictOldest()
	}
	return w, h
}

// Len reports the number of cached measurements.
func (c *MeasureCache) Len() int {
	return c.ll.Len()
}

func (c *MeasureCache) evictOldest() {
	el := c.ll.Back()
	if el == nil {
		return
	}
	c.ll.Remove(el)
	delete(c.items, el.Value.(*measurement).key)
}
