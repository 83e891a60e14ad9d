package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ovaphlow/pitchfork/service-barangay/pkg/apperr"
)

func TestFromQueryDefaults(t *testing.T) {
	p := FromQuery(url.Values{}, DefaultLimit)
	assert.Equal(t, Params{Page: 1, Limit: 10}, p)
	assert.Equal(t, 0, p.Offset())

	logs := FromQuery(url.Values{}, DefaultLogLimit)
	assert.Equal(t, 50, logs.Limit)
}

func TestFromQueryMalformedValuesFallBack(t *testing.T) {
	q := url.Values{"page": {"abc"}, "limit": {"-4"}, "search": {"  dela cruz "}, "status": {" pending"}}
	p := FromQuery(q, DefaultLimit)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 10, p.Limit)
	assert.Equal(t, "dela cruz", p.Search)
	assert.Equal(t, "pending", p.Status)
}

func TestFromQueryCapsLimit(t *testing.T) {
	p := FromQuery(url.Values{"page": {"3"}, "limit": {"1000"}}, DefaultLimit)
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, 200, p.Offset())
}

func TestFromQueryOversizedPageFallsBack(t *testing.T) {
	p := FromQuery(url.Values{"page": {"922337203685477581"}, "limit": {"100"}}, DefaultLimit)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 0, p.Offset())

	p = FromQuery(url.Values{"page": {"21474836"}, "limit": {"100"}}, DefaultLimit)
	assert.Equal(t, 21474836, p.Page)
	assert.Positive(t, p.Offset())
}

func TestCheckStatus(t *testing.T) {
	p := Params{Status: "approved"}
	assert.NoError(t, p.CheckStatus("pending", "approved", "released"))

	p.Status = "done"
	err := p.CheckStatus("pending", "approved", "released")
	assert.ErrorIs(t, err, apperr.ErrValidation)

	p.Status = ""
	assert.NoError(t, p.CheckStatus("pending"))
}

func TestDescribe(t *testing.T) {
	cases := []struct {
		total, limit, pages int
	}{
		{0, 10, 0},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{101, 50, 3},
	}
	for _, c := range cases {
		d := Params{Page: 1, Limit: c.limit}.Describe(c.total)
		assert.Equal(t, c.pages, d.Pages, "total=%d limit=%d", c.total, c.limit)
		assert.Equal(t, c.total, d.Total)
	}
}
