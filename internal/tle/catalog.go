// Package tle parses two-line element sets and keeps the loaded catalog.
package tle

import (
	"sync/atomic"
	"time"
)

// Entry is a single satellite's two-line element set.
type Entry struct {
	NORADID int
	Name    string
	Epoch   time.Time
	Line1   string
	Line2   string
}

// EpochRange is the span of element epochs in a dataset.
type EpochRange struct {
	Min time.Time
	Max time.Time
}

// Dataset is an immutable set of entries loaded from one source.
type Dataset struct {
	Source     string
	LoadedAt   time.Time
	EpochRange EpochRange
	Entries    []Entry

	byID map[int]int // NORAD ID -> index of first entry
}

// NewDataset indexes entries by NORAD ID and computes their epoch range.
// When an ID repeats, the first entry wins.
func NewDataset(source string, loadedAt time.Time, entries []Entry) *Dataset {
	ds := &Dataset{
		Source:   source,
		LoadedAt: loadedAt,
		Entries:  entries,
		byID:     make(map[int]int, len(entries)),
	}
	for i, e := range entries {
		if _, ok := ds.byID[e.NORADID]; !ok {
			ds.byID[e.NORADID] = i
		}
		if i == 0 || e.Epoch.Before(ds.EpochRange.Min) {
			ds.EpochRange.Min = e.Epoch
		}
		if i == 0 || e.Epoch.After(ds.EpochRange.Max) {
			ds.EpochRange.Max = e.Epoch
		}
	}
	return ds
}

// Lookup returns the entry for a NORAD ID.
func (ds *Dataset) Lookup(noradID int) (Entry, bool) {
	i, ok := ds.byID[noradID]
	if !ok {
		return Entry{}, false
	}
	return ds.Entries[i], true
}

// Catalog provides thread-safe access to the current dataset.
type Catalog struct {
	dataset atomic.Pointer[Dataset]
}

// NewCatalog creates an empty Catalog.
func NewCatalog() *Catalog {
	return &Catalog{}
}

// Get returns the current dataset, or nil if none has been loaded.
func (c *Catalog) Get() *Dataset {
	return c.dataset.Load()
}

// Set atomically replaces the current dataset.
func (c *Catalog) Set(ds *Dataset) {
	c.dataset.Store(ds)
}

// AgeSeconds returns the age of the current dataset in seconds.
// Returns -1 if no dataset is loaded.
func (c *Catalog) AgeSeconds() float64 {
	ds := c.dataset.Load()
	if ds == nil {
		return -1
	}
	return time.Since(ds.LoadedAt).Seconds()
}
