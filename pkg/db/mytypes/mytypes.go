package mytypes

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/mpapenbr/race-strategy-sim/pkg/model"
)

type (
	// jsonb column holding the stints of a race result
	StintSlice []model.StintResult
	// jsonb column holding a full car setup
	CarDefinition model.Car
)

func (s *StintSlice) Scan(value any) error {
	data, err := asBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, s)
}

func (s StintSlice) Value() (driver.Value, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(s)
}

func (c *CarDefinition) Scan(value any) error {
	data, err := asBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, c)
}

func (c CarDefinition) Value() (driver.Value, error) {
	return json.Marshal(c)
}

func asBytes(value any) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported type %T for json column", value)
	}
}
