// Package catalog holds per-vector metadata in insertion order.
//
// The catalog is the parallel sequence to the vector index: position i holds the
// metadata of ordinal i. It keeps a reverse map from stable id to ordinal and one
// roaring bitmap per tenant so tenant eligibility is a single membership test.
//
// Catalog does no locking of its own; the store serializes access to it.
package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hyperjump/kensaku/internal/errs"
	"github.com/hyperjump/kensaku/internal/models"
)

// StableIDPrefix is prepended to the ordinal to form a stable id.
const StableIDPrefix = "vec_"

// StableID returns the externally visible id for an ordinal.
func StableID(ordinal int) string {
	return StableIDPrefix + strconv.Itoa(ordinal)
}

// ParseStableID returns the ordinal encoded in id.
func ParseStableID(id string) (int, bool) {
	rest, ok := strings.CutPrefix(id, StableIDPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 0 || StableID(n) != id {
		return 0, false
	}
	return n, true
}

// Catalog is an append-only metadata sequence.
type Catalog struct {
	entries  []models.VectorEntry
	byID     map[string]int
	tenants  map[string]*roaring.Bitmap
	untagged *roaring.Bitmap
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{
		byID:     make(map[string]int),
		tenants:  make(map[string]*roaring.Bitmap),
		untagged: roaring.New(),
	}
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Append records metadata for freshly assigned ordinals and returns the stable ids.
// ordinals must continue the sequence from Len.
func (c *Catalog) Append(ordinals []int, items []models.Metadata) ([]string, error) {
	if len(ordinals) != len(items) {
		return nil, &errs.CountMismatch{Vectors: len(ordinals), Metadata: len(items)}
	}
	for i, ord := range ordinals {
		if ord != len(c.entries)+i {
			return nil, errs.Internal("catalog append",
				fmt.Errorf("ordinal %d out of sequence, expected %d", ord, len(c.entries)+i))
		}
	}

	ids := make([]string, len(ordinals))
	for i, ord := range ordinals {
		id := StableID(ord)
		c.entries = append(c.entries, models.VectorEntry{Ordinal: ord, StableID: id, Metadata: items[i]})
		c.byID[id] = ord
		c.indexTenant(uint32(ord), items[i])
		ids[i] = id
	}
	return ids, nil
}

func (c *Catalog) indexTenant(ord uint32, md models.Metadata) {
	if !md.HasTenant() {
		c.untagged.Add(ord)
		return
	}
	bm, ok := c.tenants[md.Tenant]
	if !ok {
		bm = roaring.New()
		c.tenants[md.Tenant] = bm
	}
	bm.Add(ord)
}

// Lookup returns the entry at ordinal.
func (c *Catalog) Lookup(ordinal int) (models.VectorEntry, error) {
	if ordinal < 0 || ordinal >= len(c.entries) {
		return models.VectorEntry{}, errs.NotFound("ordinal %d out of range [0,%d)", ordinal, len(c.entries))
	}
	return c.entries[ordinal], nil
}

// LookupByStableID returns the entry registered under id.
func (c *Catalog) LookupByStableID(id string) (models.VectorEntry, error) {
	ord, ok := c.byID[id]
	if !ok {
		return models.VectorEntry{}, errs.NotFound("vector %q", id)
	}
	return c.entries[ord], nil
}

// Eligible reports whether ordinal may be returned to a caller scoped to tenant.
// An empty tenant sees everything. Untagged entries are visible to every tenant;
// this is a compatibility allowance and weakens isolation for documents ingested
// without a tenant.
func (c *Catalog) Eligible(ordinal int, tenant string) bool {
	if ordinal < 0 || ordinal >= len(c.entries) {
		return false
	}
	if tenant == "" {
		return true
	}
	ord := uint32(ordinal)
	if c.untagged.Contains(ord) {
		return true
	}
	bm, ok := c.tenants[tenant]
	return ok && bm.Contains(ord)
}

// TenantCount returns the number of entries tagged with tenant.
func (c *Catalog) TenantCount(tenant string) int {
	bm, ok := c.tenants[tenant]
	if !ok {
		return 0
	}
	return int(bm.GetCardinality())
}

// UntaggedCount returns the number of entries with no tenant.
func (c *Catalog) UntaggedCount() int {
	return int(c.untagged.GetCardinality())
}

// Tenants returns the number of distinct tenants seen.
func (c *Catalog) Tenants() int {
	return len(c.tenants)
}
