package jsonrpc

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var ErrBadID = errors.New("jsonrpc: id must be either a number or a string")

type Kind uint8

const (
	Null Kind = iota
	Number
	Text
)

// ID identifies a request. It's either an unsigned number or a string. The zero value
// is the null id, which JSON-RPC uses in responses to requests whose id couldn't be
// determined. IDs are comparable.
type ID struct {
	kind Kind
	num  uint64
	text string
}

func NumberID(num uint64) ID {
	return ID{kind: Number, num: num}
}

func TextID(text string) ID {
	return ID{kind: Text, text: text}
}

func (id ID) Kind() Kind {
	return id.kind
}

func (id ID) IsNull() bool {
	return id.kind == Null
}

// Number returns the numeric value. ok is false if the id isn't a number.
func (id ID) Number() (num uint64, ok bool) {
	return id.num, id.kind == Number
}

// Text returns the string value. ok is false if the id isn't a string.
func (id ID) Text() (text string, ok bool) {
	return id.text, id.kind == Text
}

// String renders numbers as is and strings quoted, so 1 and "1" are distinguishable
// in logs.
func (id ID) String() string {
	switch id.kind {
	case Number:
		return strconv.FormatUint(id.num, 10)
	case Text:
		return strconv.Quote(id.text)
	default:
		return "null"
	}
}

func (id ID) MarshalJSON() ([]byte, error) {
	switch id.kind {
	case Number:
		return strconv.AppendUint(nil, id.num, 10), nil
	case Text:
		return json.Marshal(id.text)
	default:
		return []byte("null"), nil
	}
}

func (id *ID) UnmarshalJSON(data []byte) error {
	iter := json.BorrowIterator(data)
	defer json.ReturnIterator(iter)

	switch iter.WhatIsNext() {
	case jsoniter.StringValue:
		*id = TextID(iter.ReadString())
	case jsoniter.NumberValue:
		raw := iter.ReadNumber()
		num, err := strconv.ParseUint(string(raw), 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrBadID, raw)
		}

		*id = NumberID(num)
	case jsoniter.NilValue:
		iter.ReadNil()
		*id = ID{}
	default:
		return ErrBadID
	}

	if iter.Error != nil && iter.Error != io.EOF {
		return iter.Error
	}

	return nil
}
