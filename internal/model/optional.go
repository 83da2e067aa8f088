package model

import (
	"bytes"
	"encoding/json"
)

// Optional 三态字段：未提供 / 显式 null / 有值
//
// 用于部分更新请求：JSON 中缺少该键时保持零值（Unset），
// 值为 null 时 UnmarshalJSON 仍会被调用，从而区分 Null 与 Unset。
type Optional[T any] struct {
	set   bool
	valid bool
	value T
}

// Some 构造有值的 Optional
func Some[T any](v T) Optional[T] {
	return Optional[T]{set: true, valid: true, value: v}
}

// Null 构造显式 null 的 Optional
func Null[T any]() Optional[T] {
	return Optional[T]{set: true}
}

// IsSet 请求中是否出现了该键
func (o Optional[T]) IsSet() bool { return o.set }

// IsNull 键存在且值为 null
func (o Optional[T]) IsNull() bool { return o.set && !o.valid }

// Get 返回值与是否有值
func (o Optional[T]) Get() (T, bool) { return o.value, o.valid }

// UnmarshalJSON 实现 json.Unmarshaler
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.valid = false
		var zero T
		o.value = zero
		return nil
	}
	if err := json.Unmarshal(data, &o.value); err != nil {
		return err
	}
	o.valid = true
	return nil
}

// MarshalJSON 实现 json.Marshaler；Unset 与 Null 都输出 null
func (o Optional[T]) MarshalJSON() ([]byte, error) {
	if !o.valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.value)
}
