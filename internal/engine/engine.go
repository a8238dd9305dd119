package engine

import (
	"errors"
	"io"
)

// Kind represents token kinds from a generic source.
type Kind int

const (
	KindBeginObject Kind = iota
	KindEndObject
	KindBeginArray
	KindEndArray
	KindKey
	KindString
	KindNumber
	KindBool
	KindNull
)

// Token represents a streaming token with approximate input offset.
type Token struct {
	Kind   Kind
	String string
	Number string
	Bool   bool
	Offset int64
}

// TokenSource is a minimal interface required by the engine.
type TokenSource interface {
	NextToken() (Token, error)
	Location() int64
}

// ErrTrailingData is returned when a document holds more than one top-level value.
var ErrTrailingData = errors.New("engine: trailing data after top-level value")

// Builder assembles a tree of V from decoded tokens. Object keys and values are
// handed over in input order so builders can preserve declaration order.
type Builder[V any] interface {
	Null() V
	String(s string) V
	Number(text string) (V, error)
	Bool(b bool) V
	Object(keys []string, vals []V) V
	Array(vals []V) V
}

// Decode builds a single value from the token source and rejects trailing data.
func Decode[V any](src TokenSource, b Builder[V]) (V, error) {
	var zero V
	tok, err := src.NextToken()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return zero, io.ErrUnexpectedEOF
		}
		return zero, err
	}
	v, err := decodeValue(src, tok, b)
	if err != nil {
		return zero, err
	}
	if _, err := src.NextToken(); !errors.Is(err, io.EOF) {
		if err != nil {
			return zero, err
		}
		return zero, ErrTrailingData
	}
	return v, nil
}

func decodeValue[V any](src TokenSource, tok Token, b Builder[V]) (V, error) {
	var zero V
	switch tok.Kind {
	case KindBeginObject:
		return decodeObject(src, b)
	case KindBeginArray:
		return decodeArray(src, b)
	case KindString:
		return b.String(tok.String), nil
	case KindNumber:
		return b.Number(tok.Number)
	case KindBool:
		return b.Bool(tok.Bool), nil
	case KindNull:
		return b.Null(), nil
	default:
		return zero, io.ErrUnexpectedEOF
	}
}

func decodeObject[V any](src TokenSource, b Builder[V]) (V, error) {
	var zero V
	var keys []string
	var vals []V
	for {
		tok, err := src.NextToken()
		if err != nil {
			return zero, unexpectedEOF(err)
		}
		if tok.Kind == KindEndObject {
			return b.Object(keys, vals), nil
		}
		if tok.Kind != KindKey {
			return zero, io.ErrUnexpectedEOF
		}
		vt, err := src.NextToken()
		if err != nil {
			return zero, unexpectedEOF(err)
		}
		v, err := decodeValue(src, vt, b)
		if err != nil {
			return zero, err
		}
		keys = append(keys, tok.String)
		vals = append(vals, v)
	}
}

func decodeArray[V any](src TokenSource, b Builder[V]) (V, error) {
	var zero V
	var arr []V
	for {
		tok, err := src.NextToken()
		if err != nil {
			return zero, unexpectedEOF(err)
		}
		if tok.Kind == KindEndArray {
			return b.Array(arr), nil
		}
		v, err := decodeValue(src, tok, b)
		if err != nil {
			return zero, err
		}
		arr = append(arr, v)
	}
}

func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
