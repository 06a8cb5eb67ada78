package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hyperjump/kensaku/internal/errs"
	"github.com/hyperjump/kensaku/internal/models"
)

func seed(t *testing.T) *Catalog {
	t.Helper()
	c := New()
	ids, err := c.Append([]int{0, 1, 2}, []models.Metadata{
		{Tenant: "u1", Text: "cats are great"},
		{Tenant: "u2", Text: "dogs are great"},
		{},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"vec_0", "vec_1", "vec_2"}, ids)
	return c
}

func TestAppendAndLookup(t *testing.T) {
	c := seed(t)
	assert.Equal(t, 3, c.Len())

	e, err := c.Lookup(1)
	require.NoError(t, err)
	assert.Equal(t, "vec_1", e.StableID)
	assert.Equal(t, "dogs are great", e.Metadata.Text)

	_, err = c.Lookup(3)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
	_, err = c.Lookup(-1)
	assert.True(t, errors.Is(err, errs.ErrNotFound))
}

func TestLookupByStableID(t *testing.T) {
	c := seed(t)

	e, err := c.LookupByStableID("vec_0")
	require.NoError(t, err)
	assert.Equal(t, "u1", e.Metadata.Tenant)
	assert.Equal(t, 0, e.Ordinal)

	_, err = c.LookupByStableID("vec_9")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestAppendCountMismatch(t *testing.T) {
	c := New()
	_, err := c.Append([]int{0, 1}, []models.Metadata{{}})
	var cm *errs.CountMismatch
	require.ErrorAs(t, err, &cm)
	assert.Equal(t, 2, cm.Vectors)
	assert.Equal(t, 1, cm.Metadata)
	assert.Equal(t, 0, c.Len())
}

func TestAppendOutOfSequence(t *testing.T) {
	c := seed(t)
	_, err := c.Append([]int{5}, []models.Metadata{{}})
	assert.ErrorIs(t, err, errs.ErrInternal)
	assert.Equal(t, 3, c.Len())
}

func TestEligible(t *testing.T) {
	c := seed(t)

	tests := []struct {
		name    string
		ordinal int
		tenant  string
		want    bool
	}{
		{"no tenant sees tagged", 1, "", true},
		{"matching tenant", 0, "u1", true},
		{"other tenant excluded", 1, "u1", false},
		{"untagged visible to any tenant", 2, "u1", true},
		{"untagged visible to unknown tenant", 2, "nobody", true},
		{"unknown tenant excluded", 0, "nobody", false},
		{"out of range", 7, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Eligible(tt.ordinal, tt.tenant))
		})
	}
}

func TestTenantCounts(t *testing.T) {
	c := seed(t)
	_, err := c.Append([]int{3}, []models.Metadata{{Tenant: "u1"}})
	require.NoError(t, err)

	assert.Equal(t, 2, c.TenantCount("u1"))
	assert.Equal(t, 1, c.TenantCount("u2"))
	assert.Equal(t, 0, c.TenantCount("u3"))
	assert.Equal(t, 1, c.UntaggedCount())
	assert.Equal(t, 2, c.Tenants())
}

func TestParseStableID(t *testing.T) {
	n, ok := ParseStableID("vec_42")
	assert.True(t, ok)
	assert.Equal(t, 42, n)

	for _, bad := range []string{"42", "vec_", "vec_-1", "vec_007", "vec_x"} {
		_, ok := ParseStableID(bad)
		assert.False(t, ok, bad)
	}
}
