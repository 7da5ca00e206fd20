package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSON stores schemaless settings payloads in a jsonb column
type JSON map[string]interface{}

// Value serializes the map for the driver. A nil map stores SQL NULL.
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan reads a jsonb column back into the map. Postgres drivers hand the
// value over as []byte or string depending on the connection mode.
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported jsonb source type %T", value)
	}

	var parsed JSON
	if err := json.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("error unmarshaling jsonb value: %w", err)
	}
	*j = parsed
	return nil
}
