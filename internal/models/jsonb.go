package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// marshalJSONB renders v for a JSONB column.
func marshalJSONB(name string, v interface{}) (driver.Value, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", name, err)
	}
	return data, nil
}

// scanJSONB decodes a JSONB column into dest. NULL and empty payloads leave
// dest untouched so callers can reset it beforehand.
func scanJSONB(name string, value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for %s", value, name)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("unmarshal %s: %w", name, err)
	}
	return nil
}
