package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// PageMeta describes the paging window of a list response.
type PageMeta struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// Page is one page of a list resource plus its paging metadata.
type Page[T any] struct {
	Data []T
	Meta PageMeta
}

type pageEnvelope[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

// DecodePage handles the backend's two list shapes: the paginated envelope
// {data, meta} and the legacy bare array. The discriminator is the first
// non-space byte being '[' and nothing else; a bare array of N items
// synthesizes meta as a single page holding everything.
func DecodePage[T any](raw []byte) (Page[T], error) {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return Page[T]{}, fmt.Errorf("decoding legacy list: %w", err)
		}
		return Page[T]{
			Data: items,
			Meta: PageMeta{
				Total:      len(items),
				Page:       1,
				Limit:      len(items),
				TotalPages: 1,
			},
		}, nil
	}

	var env pageEnvelope[T]
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return Page[T]{}, fmt.Errorf("decoding paginated envelope: %w", err)
	}
	return Page[T]{Data: env.Data, Meta: env.Meta}, nil
}

// SetNonEmpty adds key=value to q only when value is non-empty, so the
// backend never sees ambiguous empty-string filters.
func SetNonEmpty(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

// SetPositive adds key=n to q only when n is greater than zero.
func SetPositive(q url.Values, key string, n int) {
	if n > 0 {
		q.Set(key, strconv.Itoa(n))
	}
}

// SetFlag adds key=true to q only when set is true.
func SetFlag(q url.Values, key string, set bool) {
	if set {
		q.Set(key, "true")
	}
}
