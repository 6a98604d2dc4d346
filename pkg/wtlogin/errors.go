package wtlogin

import (
	"errors"
	"fmt"
)

var (
	// ErrDecode 二进制结构截断或格式错误
	ErrDecode = errors.New("wtlogin: decode error")
	// ErrMissingField 必需的TLV标签缺失
	ErrMissingField = errors.New("wtlogin: missing field")
)

// DecodeError 描述解码失败的位置
type DecodeError struct {
	What string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("wtlogin: decode %s: %v", e.What, e.Err)
	}
	return fmt.Sprintf("wtlogin: decode %s", e.What)
}

func (e *DecodeError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrDecode, e.Err}
	}
	return []error{ErrDecode}
}

// MissingFieldError 缺失的TLV标签
type MissingFieldError struct {
	Tag uint16
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("wtlogin: missing tlv 0x%x", e.Tag)
}

func (e *MissingFieldError) Unwrap() error { return ErrMissingField }

func decodeErr(what string, err error) error {
	return &DecodeError{What: what, Err: err}
}
