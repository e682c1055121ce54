// Faultline - Application Event Monitoring and Query Platform
// Copyright 2026 Faultline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/faultline-hq/faultline

// Package pagination implements the generic offset paginator used by the
// events endpoints. Cursors are row offsets rendered as "value:offset:is_prev"
// strings and surfaced to clients through RFC 5988 Link response headers.
package pagination

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Cursor is an offset-pagination position. Value is unused by the offset
// strategy but kept in the wire format so cursors stay interchangeable with
// other paginator kinds.
type Cursor struct {
	Value  int64
	Offset int
	IsPrev bool
}

// String renders the cursor wire format "value:offset:is_prev".
func (c Cursor) String() string {
	isPrev := 0
	if c.IsPrev {
		isPrev = 1
	}
	return fmt.Sprintf("%d:%d:%d", c.Value, c.Offset, isPrev)
}

// ParseCursor parses the "value:offset:is_prev" wire format.
func ParseCursor(s string) (Cursor, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return Cursor{}, fmt.Errorf("invalid cursor %q", s)
	}
	value, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return Cursor{}, fmt.Errorf("invalid cursor value in %q", s)
	}
	offset, err := strconv.Atoi(parts[1])
	if err != nil || offset < 0 {
		return Cursor{}, fmt.Errorf("invalid cursor offset in %q", s)
	}
	isPrev := parts[2] == "1"
	if parts[2] != "0" && parts[2] != "1" {
		return Cursor{}, fmt.Errorf("invalid cursor direction in %q", s)
	}
	return Cursor{Value: value, Offset: offset, IsPrev: isPrev}, nil
}

// DataFunc fetches one window of rows. Implementations are expected to
// honor limit exactly so the paginator can over-fetch by one row to detect
// whether a next page exists.
type DataFunc func(offset, limit int) ([]map[string]interface{}, error)

// Page is one page of results with its neighboring cursors. NextResults and
// PrevResults report whether following the respective cursor would yield
// rows.
type Page struct {
	Rows        []map[string]interface{}
	Next        Cursor
	NextResults bool
	Prev        Cursor
	PrevResults bool
}

// GenericOffsetPaginator produces pages by advancing a row offset per page.
// It is agnostic to the row source: the events endpoints hand it a closure
// over a fully built engine query.
type GenericOffsetPaginator struct {
	DataFn DataFunc
}

// GetResult fetches the page at the cursor. It requests limit+1 rows and
// uses the overflow row only to decide NextResults; the overflow row is
// never returned.
func (p GenericOffsetPaginator) GetResult(limit int, cursor Cursor) (*Page, error) {
	if limit < 1 {
		return nil, fmt.Errorf("pagination limit must be positive, got %d", limit)
	}

	offset := cursor.Offset
	rows, err := p.DataFn(offset, limit+1)
	if err != nil {
		return nil, err
	}

	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}

	prevOffset := offset - limit
	if prevOffset < 0 {
		prevOffset = 0
	}

	return &Page{
		Rows:        rows,
		Next:        Cursor{Offset: offset + limit},
		NextResults: hasMore,
		Prev:        Cursor{Offset: prevOffset, IsPrev: true},
		PrevResults: offset > 0,
	}, nil
}

// LinkHeader renders the page's next/previous cursors as a Link header
// value against the request URL, replacing any cursor already present.
func (p *Page) LinkHeader(requestURL *url.URL) string {
	return strings.Join([]string{
		buildCursorLink(requestURL, "previous", p.Prev, p.PrevResults),
		buildCursorLink(requestURL, "next", p.Next, p.NextResults),
	}, ", ")
}

func buildCursorLink(requestURL *url.URL, rel string, cursor Cursor, hasResults bool) string {
	u := *requestURL
	q := u.Query()
	q.Set("cursor", cursor.String())
	u.RawQuery = q.Encode()

	return fmt.Sprintf(`<%s>; rel="%s"; results="%t"; cursor="%s"`,
		u.String(), rel, hasResults, cursor)
}
