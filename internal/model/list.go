package model

import (
	"net/url"
	"sort"
	"strconv"
)

// ListParams are the query knobs shared by every list endpoint. Ordering is
// a field name, optionally prefixed with "-" for descending.
type ListParams struct {
	Page     int
	Search   string
	Ordering string
	Filters  map[string]string
}

// Values encodes the params as a query string. Zero values are omitted.
func (p ListParams) Values() url.Values {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Search != "" {
		v.Set("search", p.Search)
	}
	if p.Ordering != "" {
		v.Set("ordering", p.Ordering)
	}
	keys := make([]string, 0, len(p.Filters))
	for k := range p.Filters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if p.Filters[k] != "" {
			v.Set(k, p.Filters[k])
		}
	}
	return v
}

// Filter returns the named filter value, or "".
func (p ListParams) Filter(name string) string {
	if p.Filters == nil {
		return ""
	}
	return p.Filters[name]
}

type Page[T any] struct {
	Count    int    `json:"count"`
	Next     string `json:"next,omitempty"`
	Previous string `json:"previous,omitempty"`
	Results  []T    `json:"results"`
}
