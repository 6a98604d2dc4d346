package binary

import (
	"bytes"
	"encoding/binary"
)

// Writer 大端序字节写入器
type Writer struct {
	buf bytes.Buffer
}

func NewWriter() *Writer { return &Writer{} }

func (w *Writer) WriteByte(b byte) error {
	return w.buf.WriteByte(b)
}

func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf.WriteByte(1)
		return
	}
	w.buf.WriteByte(0)
}

func (w *Writer) WriteUint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *Writer) WriteInt64(v int64) {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(v))
	w.buf.Write(b[:])
}

func (w *Writer) Write(b []byte) {
	w.buf.Write(b)
}

// WriteBytesShort 写入u16长度前缀的字节串
func (w *Writer) WriteBytesShort(b []byte) {
	w.WriteUint16(uint16(len(b)))
	w.buf.Write(b)
}

func (w *Writer) WriteStringShort(s string) {
	w.WriteBytesShort([]byte(s))
}

// WriteTLV 写入 tag(u16) + len(u16) + value
func (w *Writer) WriteTLV(tag uint16, value []byte) {
	w.WriteUint16(tag)
	w.WriteBytesShort(value)
}

func (w *Writer) Bytes() []byte { return w.buf.Bytes() }
