package catalog

import (
	"context"

	"finsight/src/listening"
)

var _ listening.Catalog = Empty{}

// Empty is a catalog with no items, used when no library database is
// configured. Every lookup misses, so genre stats stay empty.
type Empty struct{}

func (Empty) GetItem(ctx context.Context, itemID string) (*listening.Item, error) {
	return nil, nil
}

func (Empty) ListItems(ctx context.Context, kind listening.ItemKind) ([]listening.Item, error) {
	return []listening.Item{}, nil
}
