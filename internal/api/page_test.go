package api_test

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pastoreohq/go-pastoreo/internal/api"
)

type item struct {
	ID string `json:"id"`
}

func TestDecodePage(t *testing.T) {
	t.Run("paginated envelope", func(t *testing.T) {
		raw := []byte(`{"data":[{"id":"a"},{"id":"b"}],"meta":{"total":12,"page":2,"limit":2,"totalPages":6}}`)

		page, err := api.DecodePage[item](raw)
		require.NoError(t, err)

		assert.Len(t, page.Data, 2)
		assert.Equal(t, api.PageMeta{Total: 12, Page: 2, Limit: 2, TotalPages: 6}, page.Meta)
	})

	t.Run("legacy bare array synthesizes meta", func(t *testing.T) {
		raw := []byte(`[{"id":"a"},{"id":"b"},{"id":"c"}]`)

		page, err := api.DecodePage[item](raw)
		require.NoError(t, err)

		assert.Len(t, page.Data, 3)
		assert.Equal(t, api.PageMeta{Total: 3, Page: 1, Limit: 3, TotalPages: 1}, page.Meta)
	})

	t.Run("bare array with leading whitespace", func(t *testing.T) {
		raw := []byte("\n  [{\"id\":\"a\"}]")

		page, err := api.DecodePage[item](raw)
		require.NoError(t, err)

		assert.Len(t, page.Data, 1)
		assert.Equal(t, 1, page.Meta.Total)
	})

	t.Run("empty bare array", func(t *testing.T) {
		page, err := api.DecodePage[item]([]byte(`[]`))
		require.NoError(t, err)

		assert.Empty(t, page.Data)
		assert.Equal(t, api.PageMeta{Total: 0, Page: 1, Limit: 0, TotalPages: 1}, page.Meta)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := api.DecodePage[item]([]byte(`not json`))
		assert.Error(t, err)
	})
}

func TestQueryHelpers(t *testing.T) {
	q := url.Values{}

	api.SetNonEmpty(q, "status", "VISITOR")
	api.SetNonEmpty(q, "search", "")
	api.SetFlag(q, "assignedToMe", false)
	api.SetFlag(q, "active", true)
	api.SetPositive(q, "page", 0)
	api.SetPositive(q, "limit", 25)

	assert.Equal(t, "VISITOR", q.Get("status"))
	assert.Equal(t, "true", q.Get("active"))
	assert.Equal(t, "25", q.Get("limit"))

	// Unset parameters must not appear at all, not as empty strings.
	_, hasSearch := q["search"]
	_, hasAssigned := q["assignedToMe"]
	_, hasPage := q["page"]
	assert.False(t, hasSearch)
	assert.False(t, hasAssigned)
	assert.False(t, hasPage)
}
