package records

import (
	"math"
	"strconv"
	"strings"
)

// Kind of a field value as it appeared in the upstream JSON.
type Kind uint8

const (
	KindNull Kind = iota
	KindString
	KindNumber
	KindBool
	KindRaw // nested object or array, kept as compact JSON text
)

// Value is a displayable field value. Numbers keep their literal text so
// they are written back exactly as received.
type Value struct {
	Kind Kind
	Text string
}

// String returns the display text; null values display as "". Numbers show in
// their shortest form, so 1.50 reads "1.5" and 1e2 reads "100".
func (v Value) String() string {
	switch v.Kind {
	case KindNull:
		return ""
	case KindNumber:
		return numberText(v.Text)
	}
	return v.Text
}

// numberText formats a JSON number literal the way a JavaScript client
// stringifies it: plain decimals in [1e-6, 1e21), exponent form outside.
func numberText(literal string) string {
	f, err := strconv.ParseFloat(literal, 64)
	switch {
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case err != nil:
		return literal
	case f == 0:
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e21 || abs < 1e-6 {
		mant, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
		return mant + "e" + exp[:1] + strings.TrimLeft(exp[1:], "0")
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func (v Value) IsNull() bool { return v.Kind == KindNull }

type Field struct {
	Name  string
	Value Value
}

func String(name, s string) Field { return Field{Name: name, Value: Value{Kind: KindString, Text: s}} }
func Number(name, literal string) Field {
	return Field{Name: name, Value: Value{Kind: KindNumber, Text: literal}}
}
func Null(name string) Field { return Field{Name: name, Value: Value{Kind: KindNull}} }

// Record is one row of upstream data: named fields in insertion order.
// The zero value is an empty record. Records are not modified after construction.
type Record struct {
	fields []Field
}

// New builds a record from fields. A repeated name keeps its first position and
// takes the last value, the way a JSON object literal behaves.
func New(fields ...Field) Record {
	out := make([]Field, 0, len(fields))
	for _, f := range fields {
		out = put(out, f)
	}
	return Record{fields: out}
}

func put(fields []Field, f Field) []Field {
	for i := range fields {
		if fields[i].Name == f.Name {
			fields[i].Value = f.Value
			return fields
		}
	}
	return append(fields, f)
}

func (r Record) Len() int { return len(r.fields) }

// Fields returns a copy of the fields in order.
func (r Record) Fields() []Field {
	out := make([]Field, len(r.fields))
	copy(out, r.fields)
	return out
}

func (r Record) Names() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Name
	}
	return out
}

// Get returns the display text of a field and whether it is present and non-null.
func (r Record) Get(name string) (string, bool) {
	for _, f := range r.fields {
		if f.Name == name {
			return f.Value.String(), !f.Value.IsNull()
		}
	}
	return "", false
}

// Text is Get without the presence flag.
func (r Record) Text(name string) string {
	s, _ := r.Get(name)
	return s
}

// Joined concatenates every value's display text with sep, in field order.
func (r Record) Joined(sep string) string {
	var b strings.Builder
	for i, f := range r.fields {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteString(f.Value.String())
	}
	return b.String()
}
