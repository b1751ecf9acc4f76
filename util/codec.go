package util

import (
	"encoding/json"
	"fmt"
)

type Codec[T any] interface {
	Encode(value *T) ([]byte, error)
	Decode(data []byte) (*T, error)
}

type jsonCodec[T any] struct{}

var _ Codec[any] = jsonCodec[any]{}

func NewJsonCodec[T any]() Codec[T] {
	return jsonCodec[T]{}
}

func (jsonCodec[T]) Encode(value *T) ([]byte, error) {
	if value == nil {
		return nil, fmt.Errorf("can not encode nil value")
	}
	return json.Marshal(value)
}

func (jsonCodec[T]) Decode(data []byte) (*T, error) {
	var res T
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return &res, nil
}
