package wtlogin

import (
	"fmt"

	"github.com/lz1998/RICQ/pkg/utils/binary"
)

// tlvEnd 两字节标签模式下的列表结束标记
const tlvEnd = 0xff

// TLVMap 标签到原始值的映射
// 值被解释后即从映射中移除（Take），保证每个标签在一次解码中只被使用一次
type TLVMap map[uint16][]byte

// Take 取出并移除标签对应的值
func (m TLVMap) Take(tag uint16) ([]byte, bool) {
	v, ok := m[tag]
	if ok {
		delete(m, tag)
	}
	return v, ok
}

// TakeString 取出标签值并按字符串返回
func (m TLVMap) TakeString(tag uint16) *string {
	v, ok := m.Take(tag)
	if !ok {
		return nil
	}
	s := string(v)
	return &s
}

func (m TLVMap) Has(tag uint16) bool {
	_, ok := m[tag]
	return ok
}

// DecodeTLVMap 将整个缓冲区解析为TLV映射
// 格式：tag(u16) + len(u16) + value，直到缓冲区耗尽或遇到结束标记；
// 字段越界视为截断，返回ErrDecode
func DecodeTLVMap(data []byte) (TLVMap, error) {
	return ReadTLVMap(binary.NewReader(data))
}

// ReadTLVMap 从读取器当前位置开始解析TLV映射
func ReadTLVMap(r *binary.Reader) (TLVMap, error) {
	m := make(TLVMap)
	for r.Len() >= 2 {
		tag := r.ReadUint16()
		if tag == tlvEnd {
			return m, nil
		}
		if r.Len() < 2 {
			return nil, decodeErr(fmt.Sprintf("tlv 0x%x length", tag), r.Err())
		}
		n := int(r.ReadUint16())
		if r.Len() < n {
			return nil, decodeErr(fmt.Sprintf("tlv 0x%x value", tag), fmt.Errorf("need %d bytes, have %d", n, r.Len()))
		}
		m[tag] = r.ReadBytes(n)
	}
	if r.Len() == 1 {
		return nil, decodeErr("tlv tag", fmt.Errorf("trailing byte"))
	}
	if err := r.Err(); err != nil {
		return nil, decodeErr("tlv", err)
	}
	return m, nil
}

// ReadCountedTLVMap 解析带u16计数前缀的TLV块（0x119、0x161等嵌套块使用）
func ReadCountedTLVMap(data []byte) (TLVMap, error) {
	r := binary.NewReader(data)
	r.Skip(2)
	if err := r.Err(); err != nil {
		return nil, decodeErr("tlv count", err)
	}
	return ReadTLVMap(r)
}
