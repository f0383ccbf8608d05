package pagination

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	svcErr "github.com/goldwen/matching-service/internal/errors"
)

// Cursor is the opaque pagination state we encode/decode.
// ChoiceID + CreatedUnix (in millis) establish a stable cursor over a
// most-recent-first choice history.
type Cursor struct {
	ChoiceID    uint64 `json:"choice_id"`
	CreatedUnix int64  `json:"created_unix,omitempty"`
}

// Encode converts a Cursor into a Base64 string.
func Encode(c Cursor) (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal cursor: %w", err)
	}
	return base64.URLEncoding.EncodeToString(b), nil
}

// Decode parses a Base64 string into a Cursor.
// Empty token → empty cursor (first page). A token that fails to decode is
// caller input, so it surfaces as a validation error, not an internal one.
func Decode(token string) (Cursor, error) {
	if token == "" {
		return Cursor{}, nil
	}

	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return Cursor{}, svcErr.Validation("invalid pagination token")
	}

	var c Cursor
	if err := json.Unmarshal(b, &c); err != nil {
		return Cursor{}, svcErr.Validation("invalid pagination token")
	}
	return c, nil
}
