package metrics

import "time"

// ValueKind discriminates the Value tagged union.
type ValueKind int

const (
	KindUInt ValueKind = iota
	KindFloat
	KindString
	KindBoolean
	KindDateTime
	KindList
)

// Value is the closed set of types a metric may carry. Only the field
// matching Kind is meaningful.
type Value struct {
	Kind   ValueKind
	UInt   uint64
	Float  float64
	String string
	Bool   bool
	Time   time.Time
	List   []Value
}

func UIntValue(v uint64) Value       { return Value{Kind: KindUInt, UInt: v} }
func FloatValue(v float64) Value     { return Value{Kind: KindFloat, Float: v} }
func StringValue(v string) Value     { return Value{Kind: KindString, String: v} }
func BoolValue(v bool) Value         { return Value{Kind: KindBoolean, Bool: v} }
func DateTimeValue(v time.Time) Value { return Value{Kind: KindDateTime, Time: v} }
func ListValue(v []Value) Value      { return Value{Kind: KindList, List: v} }
