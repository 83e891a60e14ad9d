// Package pagination implements the page/limit/search/status list contract.
package pagination

import (
	"math"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
)

const (
	DefaultLimit    = 10
	DefaultLogLimit = 50
	MaxLimit        = 100
)

// OrderNewestFirst is the ordering used by every list query.
const OrderNewestFirst = "created_at DESC, id DESC"

// Params is a normalized list request.
type Params struct {
	Page   int
	Limit  int
	Search string
	Status string
}

// FromQuery parses page/limit/search/status. Malformed or out-of-range numbers fall back to defaults.
func FromQuery(q url.Values, defaultLimit int) Params {
	if defaultLimit <= 0 {
		defaultLimit = DefaultLimit
	}
	p := Params{
		Page:   positiveInt(q.Get("page"), 1),
		Limit:  positiveInt(q.Get("limit"), defaultLimit),
		Search: strings.TrimSpace(q.Get("search")),
		Status: strings.TrimSpace(q.Get("status")),
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	// the offset must stay within int32
	if p.Page > math.MaxInt32/p.Limit {
		p.Page = 1
	}
	return p
}

func positiveInt(s string, def int) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Offset of the first row of the page.
func (p Params) Offset() int { return (p.Page - 1) * p.Limit }

// CheckStatus rejects a status filter outside allowed. An empty status is accepted.
func (p Params) CheckStatus(allowed ...string) error {
	if p.Status == "" || slices.Contains(allowed, p.Status) {
		return nil
	}
	return apperr.Field("status", "invalid status; expected one of "+strings.Join(allowed, ", "))
}

// Descriptor is returned alongside every page of rows.
type Descriptor struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
	Pages int `json:"pages"`
}

// Describe builds the descriptor; pages is ceil(total/limit) and 0 when total is 0.
func (p Params) Describe(total int) Descriptor {
	pages := 0
	if total > 0 && p.Limit > 0 {
		pages = (total + p.Limit - 1) / p.Limit
	}
	return Descriptor{Page: p.Page, Limit: p.Limit, Total: total, Pages: pages}
}
