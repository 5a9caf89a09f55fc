package frame

import (
	"strconv"
	"strings"
	"time"
)

// Column type names.
const (
	TypeInteger  = "integer"
	TypeFloat    = "float"
	TypeString   = "string"
	TypeBoolean  = "boolean"
	TypeDatetime = "datetime"
	TypeUnknown  = "unknown"
)

// TypeOf names the column type of a single value. Nil is unknown.
func TypeOf(v any) string {
	switch v.(type) {
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return TypeInteger
	case float32, float64:
		return TypeFloat
	case string:
		return TypeString
	case bool:
		return TypeBoolean
	case time.Time:
		return TypeDatetime
	default:
		return TypeUnknown
	}
}

// ParseValue converts a raw text cell into the narrowest matching Go value:
// int64, float64, bool, or the original string. Empty cells become nil.
func ParseValue(s string) any {
	if s == "" {
		return nil
	}
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	switch strings.ToLower(s) {
	case "true":
		return true
	case "false":
		return false
	}
	return s
}
