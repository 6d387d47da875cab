package connectors

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/iddaa-lens/laundry/pkg/models"
)

// itemsEnvelope is the wrapped form of a feed: {"items": [...]}
type itemsEnvelope struct {
	Items []models.Item `json:"items"`
}

// DecodeItems parses a JSON feed that is either a bare array of items or an
// object with an "items" array. Items without an id get a stable one derived
// from their URL or title.
func DecodeItems(data []byte) ([]models.Item, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var items []models.Item
	switch data[0] {
	case '[':
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("failed to decode item array: %w", err)
		}
	case '{':
		var envelope itemsEnvelope
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, fmt.Errorf("failed to decode item envelope: %w", err)
		}
		items = envelope.Items
	default:
		return nil, fmt.Errorf("unexpected feed payload starting with %q", data[0])
	}

	for i := range items {
		if items[i].ID == "" {
			items[i].ID = stableItemID(items[i], i)
		}
	}
	return items, nil
}

func stableItemID(item models.Item, index int) string {
	key := item.URL
	if key == "" {
		key = item.Title
	}
	if key == "" {
		key = strconv.Itoa(index)
	}
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}
