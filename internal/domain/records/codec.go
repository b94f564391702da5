package records

import (
	"fmt"
	"io"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DecodeSnapshot parses a top-level JSON array of objects, keeping each object's
// field order. A top-level null is an empty snapshot.
func DecodeSnapshot(data []byte) ([]Record, error) {
	iter := jsoniter.ParseBytes(json, data)
	switch iter.WhatIsNext() {
	case jsoniter.NilValue:
		iter.ReadNil()
		return []Record{}, nil
	case jsoniter.ArrayValue:
	default:
		return nil, fmt.Errorf("%w: expected array", ErrMalformedSnapshot)
	}

	out := []Record{}
	var bad error
	iter.ReadArrayCB(func(it *jsoniter.Iterator) bool {
		if it.WhatIsNext() != jsoniter.ObjectValue {
			bad = fmt.Errorf("%w: element %d is not an object", ErrMalformedSnapshot, len(out))
			return false
		}
		out = append(out, readObject(it))
		return it.Error == nil
	})
	if bad != nil {
		return nil, bad
	}
	if iter.Error != nil && iter.Error != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSnapshot, iter.Error)
	}
	return out, nil
}

// DecodeRecord parses a single JSON object.
func DecodeRecord(data []byte) (Record, error) {
	iter := jsoniter.ParseBytes(json, data)
	if iter.WhatIsNext() != jsoniter.ObjectValue {
		return Record{}, fmt.Errorf("%w: expected object", ErrMalformedSnapshot)
	}
	r := readObject(iter)
	if iter.Error != nil && iter.Error != io.EOF {
		return Record{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, iter.Error)
	}
	return r, nil
}

func readObject(it *jsoniter.Iterator) Record {
	var fields []Field
	it.ReadObjectCB(func(it *jsoniter.Iterator, name string) bool {
		fields = put(fields, Field{Name: name, Value: readValue(it)})
		return it.Error == nil
	})
	return Record{fields: fields}
}

func readValue(it *jsoniter.Iterator) Value {
	switch it.WhatIsNext() {
	case jsoniter.StringValue:
		return Value{Kind: KindString, Text: it.ReadString()}
	case jsoniter.NumberValue:
		return Value{Kind: KindNumber, Text: string(it.ReadNumber())}
	case jsoniter.BoolValue:
		if it.ReadBool() {
			return Value{Kind: KindBool, Text: "true"}
		}
		return Value{Kind: KindBool, Text: "false"}
	case jsoniter.NilValue:
		it.ReadNil()
		return Value{Kind: KindNull}
	default:
		return Value{Kind: KindRaw, Text: string(it.SkipAndReturnBytes())}
	}
}

// MarshalJSON writes the fields in their original order.
func (r Record) MarshalJSON() ([]byte, error) {
	stream := json.BorrowStream(nil)
	defer json.ReturnStream(stream)

	stream.WriteObjectStart()
	for i, f := range r.fields {
		if i > 0 {
			stream.WriteMore()
		}
		stream.WriteObjectField(f.Name)
		switch f.Value.Kind {
		case KindString:
			stream.WriteString(f.Value.Text)
		case KindNumber, KindBool, KindRaw:
			stream.WriteRaw(f.Value.Text)
		default:
			stream.WriteNil()
		}
	}
	stream.WriteObjectEnd()
	if stream.Error != nil {
		return nil, stream.Error
	}
	return append([]byte(nil), stream.Buffer()...), nil
}

func (r *Record) UnmarshalJSON(data []byte) error {
	rec, err := DecodeRecord(data)
	if err != nil {
		return err
	}
	*r = rec
	return nil
}
