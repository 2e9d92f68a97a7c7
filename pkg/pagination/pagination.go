// Package pagination implements keyset paging over (created_at, id). A
// cursor names the last row the client saw; the next page starts strictly
// after it, so rows inserted mid-scan never shift the window.
package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultLimit is the page size when the client does not ask for one.
	DefaultLimit = 50
	// MaxLimit bounds a single page regardless of what the client asks.
	MaxLimit = 200
)

// Params carries the paging inputs a listing accepts.
type Params struct {
	Limit  int
	Cursor string
}

// Cursor pins the position of the last row of a page.
type Cursor struct {
	CreatedAt time.Time
	ID        uuid.UUID
}

// Encode serializes the cursor into an opaque token. The instant is carried
// as unix nanoseconds so the decoded position matches the stored row
// exactly.
func (c Cursor) Encode() string {
	token := strconv.FormatInt(c.CreatedAt.UTC().UnixNano(), 10) + "." + c.ID.String()
	return base64.RawURLEncoding.EncodeToString([]byte(token))
}

// DecodeCursor reverses Encode. A blank token means "from the top" and
// decodes to nil without error.
func DecodeCursor(token string) (*Cursor, error) {
	if strings.TrimSpace(token) == "" {
		return nil, nil
	}
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}
	tsPart, idPart, ok := strings.Cut(string(raw), ".")
	if !ok {
		return nil, fmt.Errorf("malformed cursor")
	}
	nanos, err := strconv.ParseInt(tsPart, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed cursor position: %w", err)
	}
	id, err := uuid.Parse(idPart)
	if err != nil {
		return nil, fmt.Errorf("malformed cursor id: %w", err)
	}
	return &Cursor{CreatedAt: time.Unix(0, nanos).UTC(), ID: id}, nil
}

// NormalizeLimit clamps the requested page size into [1, MaxLimit],
// substituting the default for zero or negative requests.
func NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}

// LimitWithBuffer is the normalized limit plus one sentinel row; when the
// query returns the extra row another page exists.
func LimitWithBuffer(limit int) int {
	return NormalizeLimit(limit) + 1
}
