package catalog

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindList
	KindMap
)

// Value is a loosely-typed field value from an external source. The same
// logical field may arrive as a string from CSV and a number from JSON, so
// resolution never assumes a single primitive type per key.
type Value struct {
	kind Kind
	str  string
	num  float64
	b    bool
	list []Value
	m    map[string]Value
}

// RawRecord is one source row, entry or product before resolution.
type RawRecord map[string]Value

func Null() Value                       { return Value{} }
func String(s string) Value             { return Value{kind: KindString, str: s} }
func Number(f float64) Value            { return Value{kind: KindNumber, num: f} }
func Bool(b bool) Value                 { return Value{kind: KindBool, b: b} }
func List(items ...Value) Value         { return Value{kind: KindList, list: items} }
func Map(fields map[string]Value) Value { return Value{kind: KindMap, m: fields} }

func (v Value) Kind() Kind { return v.kind }

// IsEmpty reports whether the value carries no usable data: null, blank
// strings, and empty lists or maps.
func (v Value) IsEmpty() bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return strings.TrimSpace(v.str) == ""
	case KindList:
		return len(v.list) == 0
	case KindMap:
		return len(v.m) == 0
	default:
		return false
	}
}

// Text renders scalar values as trimmed text. Lists render as their scalar
// elements joined with ", "; maps render as "".
func (v Value) Text() string {
	switch v.kind {
	case KindString:
		return strings.TrimSpace(v.str)
	case KindNumber:
		if v.num == math.Trunc(v.num) && math.Abs(v.num) < 1e15 {
			return strconv.FormatInt(int64(v.num), 10)
		}
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindList:
		parts := make([]string, 0, len(v.list))
		for _, item := range v.list {
			if s := item.Text(); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return ""
	}
}

// Float coerces the value to a finite number. Strings are parsed after
// trimming; anything unparseable, NaN or infinite reports false.
func (v Value) Float() (float64, bool) {
	var f float64
	switch v.kind {
	case KindNumber:
		f = v.num
	case KindString:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v.str), 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	case KindBool:
		if v.b {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Items returns list elements; scalar values are returned as a one-element list.
func (v Value) Items() []Value {
	switch v.kind {
	case KindList:
		return v.list
	case KindNull:
		return nil
	default:
		return []Value{v}
	}
}

// Field returns a key of a map value.
func (v Value) Field(key string) (Value, bool) {
	if v.kind != KindMap {
		return Value{}, false
	}
	f, ok := v.m[key]
	return f, ok
}

// Keys returns the sorted keys of a map value.
func (v Value) Keys() []string {
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// FromAny converts a decoded JSON value (decoded with UseNumber or not) into a Value.
func FromAny(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case string:
		return String(t)
	case bool:
		return Bool(t)
	case float64:
		return Number(t)
	case int:
		return Number(float64(t))
	case int64:
		return Number(float64(t))
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return String(t.String())
		}
		return Number(f)
	case []any:
		items := make([]Value, len(t))
		for i, item := range t {
			items[i] = FromAny(item)
		}
		return List(items...)
	case map[string]any:
		fields := make(map[string]Value, len(t))
		for k, item := range t {
			fields[k] = FromAny(item)
		}
		return Map(fields)
	default:
		return Null()
	}
}

// RecordFromMap converts a decoded JSON object into a RawRecord.
func RecordFromMap(m map[string]any) RawRecord {
	rec := make(RawRecord, len(m))
	for k, v := range m {
		rec[k] = FromAny(v)
	}
	return rec
}

// Get returns the value stored under key.
func (r RawRecord) Get(key string) (Value, bool) {
	v, ok := r[key]
	return v, ok
}
