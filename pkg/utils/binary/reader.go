package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrShortBuffer 读取越过缓冲区末尾
var ErrShortBuffer = errors.New("short buffer")

// Reader 大端序字节读取器
// 与bytes.Reader不同，越界读取不会panic，而是记录第一个错误并返回零值，
// 调用方在一组读取完成后统一检查Err()
type Reader struct {
	buf []byte
	off int
	err error
}

func NewReader(data []byte) *Reader {
	return &Reader{buf: data}
}

// Err 返回第一次越界读取产生的错误
func (r *Reader) Err() error { return r.err }

// Len 剩余可读字节数
func (r *Reader) Len() int { return len(r.buf) - r.off }

func (r *Reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.Len() < n {
		r.err = fmt.Errorf("%w: need %d bytes at offset %d, have %d", ErrShortBuffer, n, r.off, r.Len())
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

// Skip 跳过n个字节
func (r *Reader) Skip(n int) { r.take(n) }

func (r *Reader) ReadUint8() byte {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *Reader) ReadUint16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint16(b)
}

func (r *Reader) ReadUint32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.BigEndian.Uint32(b)
}

func (r *Reader) ReadInt32() int32 { return int32(r.ReadUint32()) }

func (r *Reader) ReadInt64() int64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return int64(binary.BigEndian.Uint64(b))
}

// ReadBytes 读取n个字节（返回副本）
func (r *Reader) ReadBytes(n int) []byte {
	b := r.take(n)
	if b == nil {
		return nil
	}
	out := make([]byte, n)
	copy(out, b)
	return out
}

// ReadBytesShort 读取u16长度前缀的字节串
func (r *Reader) ReadBytesShort() []byte {
	n := r.ReadUint16()
	if r.err != nil {
		return nil
	}
	return r.ReadBytes(int(n))
}

// ReadStringShort 读取u16长度前缀的字符串
func (r *Reader) ReadStringShort() string {
	return string(r.ReadBytesShort())
}

// ReadStringLimit 读取固定长度的字符串
func (r *Reader) ReadStringLimit(n int) string {
	return string(r.ReadBytes(n))
}

// ReadAvailable 读取剩余全部字节
func (r *Reader) ReadAvailable() []byte {
	return r.ReadBytes(r.Len())
}
