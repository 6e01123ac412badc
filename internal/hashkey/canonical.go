package hashkey

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// NullToken is the canonical token of a missing value.
const NullToken = `\N`

// concatNullToken is how the legacy loader rendered a missing cell.
const concatNullToken = "nan"

// TimestampLayout renders timestamps at PostgreSQL resolution.
const TimestampLayout = "2006-01-02T15:04:05.000000Z07:00"

// Canonical coerces v into its stable string token.
//
// Strings are kept verbatim (no trimming or case folding: those are data
// changes, not formatting). Numbers use the shortest representation that
// round-trips. NaN, nil and invalid pgtype values are null.
func Canonical(v any) string {
	return canonical(v, NullToken)
}

func canonical(v any, null string) string {
	switch x := v.(type) {
	case nil:
		return null
	case string:
		return x
	case *string:
		if x == nil {
			return null
		}
		return *x
	case Key:
		return string(x)
	case pgtype.Text:
		if !x.Valid {
			return null
		}
		return x.String
	case pgtype.Float8:
		if !x.Valid {
			return null
		}
		return formatFloat(x.Float64, null)
	case pgtype.Int8:
		if !x.Valid {
			return null
		}
		return strconv.FormatInt(x.Int64, 10)
	case float64:
		return formatFloat(x, null)
	case float32:
		return formatFloat(float64(x), null)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.UTC().Format(TimestampLayout)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// IsNull reports whether v is a missing value.
func IsNull(v any) bool {
	return isNull(v)
}

// isNull reports whether v canonicalizes to the null token.
func isNull(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case *string:
		return x == nil
	case pgtype.Text:
		return !x.Valid
	case pgtype.Float8:
		return !x.Valid || math.IsNaN(x.Float64)
	case pgtype.Int8:
		return !x.Valid
	case float64:
		return math.IsNaN(x)
	case float32:
		return math.IsNaN(float64(x))
	}
	return false
}

func formatFloat(f float64, null string) string {
	if math.IsNaN(f) {
		return null
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
