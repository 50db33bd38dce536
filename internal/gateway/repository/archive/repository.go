package archive

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Store persists rendered consciousness reports keyed by report ID.
type Store interface {
	Put(ctx context.Context, id string, content []byte) error
	Get(ctx context.Context, id string) ([]byte, error)
	List(ctx context.Context) ([]string, error)
}

var (
	ErrNotFound  = errors.New("report not found")
	ErrInvalidID = errors.New("invalid report id")
)

func normalizeID(id string) (string, error) {
	id = strings.Trim(strings.TrimSpace(id), "/")
	if id == "" {
		return "", fmt.Errorf("%w: id is required", ErrInvalidID)
	}
	if strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return "", fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return id, nil
}
