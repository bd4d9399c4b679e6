package catalog

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/raftsql/raftsql/internal/value"
)

// rowPrefix is the key prefix shared by every row of table, used both to
// build a row key and to Scan a whole table in primary-key order.
func rowPrefix(table string) []byte {
	p := make([]byte, 0, 2+len(table))
	p = append(p, tagRow)
	p = append(p, table...)
	p = append(p, 0) // separator: table names cannot contain NUL
	return p
}

// encodePK encodes a primary-key value so that byte-lexicographic key order
// matches the value's natural order (spec.md §4.7): Integer uses big-endian
// with the sign bit flipped, String uses its raw UTF-8 bytes, Boolean and
// Float (permitted scalar PK types) get an analogous order-preserving
// encoding.
func encodePK(v value.Value) ([]byte, error) {
	switch v.Kind() {
	case value.KindInteger:
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, uint64(v.Int())^(1<<63))
		return buf, nil
	case value.KindString:
		return []byte(v.Str()), nil
	case value.KindBoolean:
		if v.Bool() {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	case value.KindFloat:
		bits := math.Float64bits(v.Float())
		if v.Float() >= 0 || math.IsNaN(v.Float()) {
			bits ^= 1 << 63
		} else {
			bits = ^bits
		}
		buf := make([]byte, 8)
		binary.BigEndian.PutUint64(buf, bits)
		return buf, nil
	default:
		return nil, fmt.Errorf("value of kind %s cannot be a primary key", v.Kind())
	}
}

func rowKey(table string, pk value.Value) ([]byte, error) {
	enc, err := encodePK(pk)
	if err != nil {
		return nil, err
	}
	return append(rowPrefix(table), enc...), nil
}

// Cell tags for the length-prefixed row encoding (spec.md §4.7). Declared
// separately from value.Kind (the numbers currently coincide) so the wire
// format doesn't silently break if Kind's iota order ever changes.
const (
	cellNull byte = iota
	cellBoolean
	cellInteger
	cellFloat
	cellString
)

// encodeRow serializes a row as a length-prefixed sequence of tagged cells.
func encodeRow(row []value.Value) []byte {
	buf := make([]byte, 0, 16*len(row))
	countBuf := make([]byte, 4)
	binary.BigEndian.PutUint32(countBuf, uint32(len(row)))
	buf = append(buf, countBuf...)
	for _, v := range row {
		switch v.Kind() {
		case value.KindNull:
			buf = append(buf, cellNull)
		case value.KindBoolean:
			buf = append(buf, cellBoolean)
			if v.Bool() {
				buf = append(buf, 1)
			} else {
				buf = append(buf, 0)
			}
		case value.KindInteger:
			buf = append(buf, cellInteger)
			b := make([]byte, 8)
			binary.BigEndian.PutUint64(b, uint64(v.Int()))
			buf = append(buf, b...)
		case value.KindFloat:
			buf = append(buf, cellFloat)
			b := make([]byte, 8)
			binary.BigEndian.PutUint64(b, math.Float64bits(v.Float()))
			buf = append(buf, b...)
		case value.KindString:
			buf = append(buf, cellString)
			s := v.Str()
			lb := make([]byte, 4)
			binary.BigEndian.PutUint32(lb, uint32(len(s)))
			buf = append(buf, lb...)
			buf = append(buf, s...)
		}
	}
	return buf
}

func decodeRow(data []byte) ([]value.Value, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("row encoding truncated")
	}
	count := binary.BigEndian.Uint32(data[:4])
	data = data[4:]
	row := make([]value.Value, 0, count)
	for i := uint32(0); i < count; i++ {
		if len(data) < 1 {
			return nil, fmt.Errorf("row encoding truncated at cell %d", i)
		}
		tag := data[0]
		data = data[1:]
		switch tag {
		case cellNull:
			row = append(row, value.Null)
		case cellBoolean:
			if len(data) < 1 {
				return nil, fmt.Errorf("row encoding truncated bool")
			}
			row = append(row, value.NewBoolean(data[0] != 0))
			data = data[1:]
		case cellInteger:
			if len(data) < 8 {
				return nil, fmt.Errorf("row encoding truncated int")
			}
			row = append(row, value.NewInteger(int64(binary.BigEndian.Uint64(data[:8]))))
			data = data[8:]
		case cellFloat:
			if len(data) < 8 {
				return nil, fmt.Errorf("row encoding truncated float")
			}
			row = append(row, value.NewFloat(math.Float64frombits(binary.BigEndian.Uint64(data[:8]))))
			data = data[8:]
		case cellString:
			if len(data) < 4 {
				return nil, fmt.Errorf("row encoding truncated string length")
			}
			slen := binary.BigEndian.Uint32(data[:4])
			data = data[4:]
			if uint32(len(data)) < slen {
				return nil, fmt.Errorf("row encoding truncated string body")
			}
			row = append(row, value.NewString(string(data[:slen])))
			data = data[slen:]
		default:
			return nil, fmt.Errorf("row encoding: unknown cell tag %d", tag)
		}
	}
	return row, nil
}

// encodeTable serializes a Table schema record.
func encodeTable(t Table) []byte {
	buf := make([]byte, 0, 64)
	buf = appendLenStr(buf, t.Name)
	buf = appendLenStr(buf, t.PrimaryKey)
	cb := make([]byte, 4)
	binary.BigEndian.PutUint32(cb, uint32(len(t.Columns)))
	buf = append(buf, cb...)
	for _, c := range t.Columns {
		buf = appendLenStr(buf, c.Name)
		buf = append(buf, byte(c.Type))
		if c.Nullable {
			buf = append(buf, 1)
		} else {
			buf = append(buf, 0)
		}
	}
	return buf
}

func decodeTable(data []byte) (Table, error) {
	var t Table
	var err error
	t.Name, data, err = readLenStr(data)
	if err != nil {
		return Table{}, err
	}
	t.PrimaryKey, data, err = readLenStr(data)
	if err != nil {
		return Table{}, err
	}
	if len(data) < 4 {
		return Table{}, fmt.Errorf("table encoding truncated column count")
	}
	count := binary.BigEndian.Uint32(data[:4])
	data = data[4:]
	t.Columns = make([]Column, 0, count)
	for i := uint32(0); i < count; i++ {
		var name string
		name, data, err = readLenStr(data)
		if err != nil {
			return Table{}, err
		}
		if len(data) < 2 {
			return Table{}, fmt.Errorf("table encoding truncated column %d", i)
		}
		typ := value.DataType(data[0])
		nullable := data[1] != 0
		data = data[2:]
		t.Columns = append(t.Columns, Column{Name: name, Type: typ, Nullable: nullable})
	}
	return t, nil
}

func appendLenStr(buf []byte, s string) []byte {
	lb := make([]byte, 4)
	binary.BigEndian.PutUint32(lb, uint32(len(s)))
	buf = append(buf, lb...)
	return append(buf, s...)
}

func readLenStr(data []byte) (string, []byte, error) {
	if len(data) < 4 {
		return "", nil, fmt.Errorf("encoding truncated string length")
	}
	l := binary.BigEndian.Uint32(data[:4])
	data = data[4:]
	if uint32(len(data)) < l {
		return "", nil, fmt.Errorf("encoding truncated string body")
	}
	return string(data[:l]), data[l:], nil
}
