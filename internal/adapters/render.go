package adapters

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"
)

// RenderValue turns a scanned column value into display text.
func RenderValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case []byte:
		return string(x)
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case driver.Valuer:
		dv, err := x.Value()
		if err != nil {
			return fmt.Sprint(x)
		}
		return RenderValue(dv)
	default:
		return fmt.Sprint(x)
	}
}
