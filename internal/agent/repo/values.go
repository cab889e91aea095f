package repo

import (
	"database/sql/driver"
	"time"

	"github.com/google/uuid"
)

// NormalizeValue converts driver values into types that print naturally.
func NormalizeValue(v any) any {
	switch val := v.(type) {
	case nil:
		return nil
	case [16]byte:
		return uuid.UUID(val).String()
	case time.Time:
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format(time.DateOnly)
		}
		return val.Format(time.RFC3339)
	case []byte:
		return string(val)
	case driver.Valuer:
		dv, err := val.Value()
		if err != nil {
			return v
		}
		return NormalizeValue(dv)
	default:
		return v
	}
}
