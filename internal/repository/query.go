package repository

import (
	"errors"
	"log/slog"
)

// Query narrows a List call. A zero Limit returns every row.
type Query struct {
	Limit int

	Paginator *Paginator
}

func NewQuery() *Query {
	return &Query{}
}

// ApplyPagination sets the page size and the cursor decoded from token.
// A non-positive limit keeps the query unbounded.
func (q *Query) ApplyPagination(limit int32, token string) error {
	if limit > 0 {
		q.Limit = min(maxPaginationLimit, int(limit))
	}

	if token == "" {
		return nil
	}

	paginator, err := DecodePageToken(token)
	if err != nil {
		slog.Warn("failed to decode page token", slog.Any("err", err), slog.String("token", token))
		return errors.New("invalid page token")
	}
	q.Paginator = paginator
	return nil
}
