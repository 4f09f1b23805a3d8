package repository

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	// ErrInvalidPaginationToken is returned when a pagination token cannot be decoded.
	ErrInvalidPaginationToken = errors.New("token is invalid")
)

const (
	maxPaginationLimit = 100
	tokenPrefix        = "id"
)

// Paginator is a keyset cursor over the primary key.
type Paginator struct {
	LastID int64
}

// Encode encodes the paginator state into a URL-safe base64 token.
func (t Paginator) Encode() string {
	key := fmt.Sprintf("%s:%d", tokenPrefix, t.LastID)
	return base64.URLEncoding.EncodeToString([]byte(key))
}

// DecodePageToken decodes a base64-encoded pagination token into a Paginator.
func DecodePageToken(encodedToken string) (*Paginator, error) {
	bytes, err := base64.URLEncoding.DecodeString(encodedToken)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 token: %w", err)
	}
	prefix, rawID, found := strings.Cut(string(bytes), ":")
	if !found || prefix != tokenPrefix {
		return nil, fmt.Errorf("invalid token format: %w", ErrInvalidPaginationToken)
	}

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("failed to parse token ID: %w", err)
	}
	if id < 0 {
		return nil, fmt.Errorf("negative token ID: %w", ErrInvalidPaginationToken)
	}

	return &Paginator{LastID: id}, nil
}
