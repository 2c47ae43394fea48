package answers

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Kind typed store an answer value lives in
type Kind int

const (
	KindUnknown Kind = iota
	KindBool         // values_tinyint
	KindInt          // values_int
	KindDecimal      // values_decimal
	KindVarchar      // values_varchar
	KindText         // values_text
)

// ParseKind maps a question schema value_type to its Kind
func ParseKind(valueType string) Kind {
	switch strings.ToLower(strings.TrimSpace(valueType)) {
	case "tinyint", "bool", "boolean":
		return KindBool
	case "int", "integer":
		return KindInt
	case "decimal", "numeric":
		return KindDecimal
	case "varchar", "string":
		return KindVarchar
	case "text":
		return KindText
	default:
		return KindUnknown
	}
}

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "tinyint"
	case KindInt:
		return "int"
	case KindDecimal:
		return "decimal"
	case KindVarchar:
		return "varchar"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Value a resolved answer value; only the field matching Kind is meaningful
type Value struct {
	Kind    Kind
	Bool    bool
	Int     int64
	Decimal decimal.Decimal
	Text    string
}

// IsTrue boolean reading of the value; int values are truthy when non-zero
func (v Value) IsTrue() bool {
	switch v.Kind {
	case KindBool:
		return v.Bool
	case KindInt:
		return v.Int != 0
	default:
		return false
	}
}

// IsBlank true for text values that are empty after trimming
func (v Value) IsBlank() bool {
	switch v.Kind {
	case KindVarchar, KindText:
		return strings.TrimSpace(v.Text) == ""
	default:
		return false
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindDecimal:
		return v.Decimal.String()
	case KindVarchar, KindText:
		return v.Text
	default:
		return ""
	}
}

// Values typed value stores keyed by answer history id
type Values struct {
	Bool    map[int64]bool
	Int     map[int64]int64
	Decimal map[int64]decimal.Decimal
	Varchar map[int64]string
	Text    map[int64]string
}

// NewValues empty stores
func NewValues() *Values {
	return &Values{
		Bool:    make(map[int64]bool),
		Int:     make(map[int64]int64),
		Decimal: make(map[int64]decimal.Decimal),
		Varchar: make(map[int64]string),
		Text:    make(map[int64]string),
	}
}

// Lookup reads historyID from the store of the given kind
func (vs *Values) Lookup(kind Kind, historyID int64) (Value, bool) {
	if vs == nil {
		return Value{}, false
	}
	switch kind {
	case KindBool:
		b, ok := vs.Bool[historyID]
		return Value{Kind: kind, Bool: b}, ok
	case KindInt:
		i, ok := vs.Int[historyID]
		return Value{Kind: kind, Int: i}, ok
	case KindDecimal:
		d, ok := vs.Decimal[historyID]
		return Value{Kind: kind, Decimal: d}, ok
	case KindVarchar:
		s, ok := vs.Varchar[historyID]
		return Value{Kind: kind, Text: s}, ok
	case KindText:
		s, ok := vs.Text[historyID]
		return Value{Kind: kind, Text: s}, ok
	default:
		return Value{}, false
	}
}
