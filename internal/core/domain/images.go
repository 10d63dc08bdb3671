package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Images is the ordered list of uploaded image paths, stored as a JSON array
// in a single TEXT column.
type Images []string

func (i *Images) Scan(value interface{}) error {
	*i = Images{}

	var raw []byte

	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Images", value)
	}

	if len(raw) == 0 {
		return nil
	}

	var paths []string

	if err := json.Unmarshal(raw, &paths); err != nil {
		return fmt.Errorf("decode images: %w", err)
	}

	if paths != nil {
		*i = paths
	}

	return nil
}

// Value encodes an empty list as NULL.
func (i Images) Value() (driver.Value, error) {
	if len(i) == 0 {
		return nil, nil
	}

	data, err := json.Marshal([]string(i))

	if err != nil {
		return nil, err
	}

	return string(data), nil
}

func (i Images) Strings() []string {
	if i == nil {
		return []string{}
	}

	return []string(i)
}
