package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWithoutPageReturnsFullSet(t *testing.T) {
	req := Parse(url.Values{}, 20)

	assert.False(t, req.Paged)
	assert.Equal(t, 0, req.Limit())
	assert.Equal(t, 0, req.Offset())
}

func TestParseWithPage(t *testing.T) {
	values := url.Values{"page": []string{"3"}}
	req := Parse(values, 20)

	require.True(t, req.Paged)
	assert.Equal(t, 3, req.Page)
	assert.Equal(t, 20, req.Limit())
	assert.Equal(t, 40, req.Offset())
}

func TestParseBadPageFallsBackToFirst(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-2", ""} {
		req := Parse(url.Values{"page": []string{raw}}, 10)
		require.True(t, req.Paged, "page=%q", raw)
		assert.Equal(t, 1, req.Page, "page=%q", raw)
		assert.Equal(t, 0, req.Offset(), "page=%q", raw)
	}
}

func TestNewMetaLinks(t *testing.T) {
	req := Parse(url.Values{"page": []string{"2"}}, 10)

	meta := NewMeta(req, "/products", 35)

	assert.Equal(t, 35, meta.Total)
	assert.Equal(t, "/products?page=3", meta.Next)
	assert.Equal(t, "/products?page=1", meta.Previous)
}

func TestNewMetaEdges(t *testing.T) {
	first := NewMeta(Parse(url.Values{"page": []string{"1"}}, 10), "/products", 25)
	assert.Empty(t, first.Previous)
	assert.Equal(t, "/products?page=2", first.Next)

	last := NewMeta(Parse(url.Values{"page": []string{"3"}}, 10), "/products", 25)
	assert.Empty(t, last.Next)
	assert.Equal(t, "/products?page=2", last.Previous)
}
