// Package format turns raw user input into SQL values according to a
// column's declared type, and engine values back into display text.
package format

import (
	"encoding/csv"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/ahmetbildirici/bby361-sqlite-web-arayuzu/pkg/core"
)

// ErrInvalidHex is returned when a blob value is not a hex string.
var ErrInvalidHex = errors.New("blob values must be written as hex digits")

// Null is the SQL literal for a missing value.
const Null = "null"

// Literal renders raw as a SQL literal fragment for col.
//
// Rules, first match wins: null flag, boolean (unquoted), text-like
// (single-quoted, quotes doubled), blob (X'..'), empty numeric (null),
// anything else verbatim.
func Literal(col core.Column, raw string, isNull bool) (string, error) {
	typ := normalize(col.Type)
	switch {
	case isNull:
		return Null, nil
	case isBoolean(typ):
		return raw, nil
	case isText(typ):
		return Quote(raw), nil
	case isBlob(typ):
		h, err := cleanHex(raw)
		if err != nil {
			return "", fmt.Errorf("column %s: %w", col.Name, err)
		}
		return "X'" + h + "'", nil
	case raw == "" && isNumeric(typ):
		return Null, nil
	default:
		return raw, nil
	}
}

// Value converts raw into a bound parameter for col using the same rules as Literal.
func Value(col core.Column, raw string, isNull bool) (any, error) {
	typ := normalize(col.Type)
	switch {
	case isNull:
		return nil, nil
	case isBoolean(typ):
		if b, err := strconv.ParseBool(strings.TrimSpace(raw)); err == nil {
			return b, nil
		}
		return raw, nil
	case isText(typ):
		return raw, nil
	case isBlob(typ):
		h, err := cleanHex(raw)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, err)
		}
		b, err := hex.DecodeString(h)
		if err != nil {
			return nil, fmt.Errorf("column %s: %w", col.Name, ErrInvalidHex)
		}
		return b, nil
	case raw == "" && isNumeric(typ):
		return nil, nil
	case isNumeric(typ):
		s := strings.TrimSpace(raw)
		if n, err := strconv.ParseInt(s, 10, 64); err == nil {
			return n, nil
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f, nil
		}
		return raw, nil
	default:
		return raw, nil
	}
}

// Quote wraps s in single quotes, doubling every embedded quote.
func Quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Cell renders an engine value for display and editing. NULL renders empty.
func Cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return strings.ToUpper(hex.EncodeToString(x))
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		if x.Hour() == 0 && x.Minute() == 0 && x.Second() == 0 && x.Nanosecond() == 0 {
			return x.Format(time.DateOnly)
		}
		return x.Format(time.DateTime)
	default:
		return fmt.Sprint(x)
	}
}

// IsBoolean reports whether a declared type is rendered as an unquoted boolean.
func IsBoolean(declared string) bool { return isBoolean(normalize(declared)) }

// IsText reports whether a declared type takes quoted string literals.
func IsText(declared string) bool { return isText(normalize(declared)) }

// IsBlob reports whether a declared type takes hex blob literals.
func IsBlob(declared string) bool { return isBlob(normalize(declared)) }

// IsNumeric reports whether a declared type has numeric flavor.
func IsNumeric(declared string) bool { return isNumeric(normalize(declared)) }

func normalize(declared string) string {
	return strings.ToLower(strings.TrimSpace(declared))
}

func isBoolean(typ string) bool {
	return typ == "boolean"
}

func isText(typ string) bool {
	if strings.Contains(typ, "char") {
		return true
	}
	switch typ {
	case "text", "clob", "datetime", "date":
		return true
	}
	return false
}

func isBlob(typ string) bool {
	return typ == "blob"
}

func isNumeric(typ string) bool {
	if strings.Contains(typ, "int") || strings.Contains(typ, "numeric") || strings.Contains(typ, "decimal") {
		return true
	}
	switch typ {
	case "real", "double", "double precision", "float":
		return true
	}
	return false
}

// cleanHex validates a hex string, tolerating an X'..' wrapper and surrounding space.
func cleanHex(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if len(s) >= 3 && (s[0] == 'x' || s[0] == 'X') && s[1] == '\'' && s[len(s)-1] == '\'' {
		s = s[2 : len(s)-1]
	}
	if len(s)%2 != 0 {
		return "", ErrInvalidHex
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return "", ErrInvalidHex
		}
	}
	return strings.ToUpper(s), nil
}

// WriteCSV writes a header line and one record per row. NULL is an empty field.
func WriteCSV(w io.Writer, rs *core.ResultSet) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(rs.Columns); err != nil {
		return err
	}
	for i := range rs.Rows {
		record := make([]string, len(rs.Columns))
		for j, col := range rs.Columns {
			record[j] = Cell(rs.Rows[i][col])
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
