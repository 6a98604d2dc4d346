package push

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

var (
	// ErrMalformed 推送内容截断或格式错误
	ErrMalformed = errors.New("malformed push payload")
	// ErrUnknownTransType 可识别的push trans外层中出现未知类型
	ErrUnknownTransType = errors.New("unknown push trans type")
)

// pbField 解出的单个字段，varint与定长整数统一放在u64中
type pbField struct {
	num  protowire.Number
	typ  protowire.Type
	u64  uint64
	data []byte
}

func (f pbField) int32() int32 { return int32(f.u64) }
func (f pbField) int64() int64 { return int64(f.u64) }

// varints repeated整数字段，兼容packed编码
func (f pbField) varints() ([]uint64, error) {
	if f.typ != protowire.BytesType {
		return []uint64{f.u64}, nil
	}
	var out []uint64
	for b := f.data; len(b) > 0; {
		v, n := protowire.ConsumeVarint(b)
		if n < 0 {
			return out, malformed(n)
		}
		out = append(out, v)
		b = b[n:]
	}
	return out, nil
}

// walkFields 按顺序遍历消息的所有字段，未知字段由fn自行忽略
func walkFields(b []byte, fn func(f pbField) error) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return malformed(n)
		}
		b = b[n:]
		f := pbField{num: num, typ: typ}
		switch typ {
		case protowire.VarintType:
			f.u64, n = protowire.ConsumeVarint(b)
		case protowire.Fixed32Type:
			var v uint32
			v, n = protowire.ConsumeFixed32(b)
			f.u64 = uint64(v)
		case protowire.Fixed64Type:
			f.u64, n = protowire.ConsumeFixed64(b)
		case protowire.BytesType:
			f.data, n = protowire.ConsumeBytes(b)
		default:
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return malformed(n)
		}
		b = b[n:]
		if err := fn(f); err != nil {
			return err
		}
	}
	return nil
}

func malformed(n int) error {
	return fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
}

type malformedError struct {
	what string
	err  error
}

func (e *malformedError) Error() string {
	return e.what + ": " + e.err.Error()
}

func (e *malformedError) Unwrap() []error {
	return []error{ErrMalformed, e.err}
}
