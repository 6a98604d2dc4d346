package crypto

import (
	"crypto/cipher"
	"encoding/binary"
	"errors"
	"fmt"

	"golang.org/x/crypto/tea"
)

const (
	TeaKeyLen    = 16
	teaBlockSize = 8
	// 16轮循环，对应x/crypto/tea的32个半轮
	teaRounds = 32
)

var ErrInvalidCipherText = errors.New("invalid tea cipher text")

// QQTea 登录协议使用的TEA分组链接模式
// 密文格式：随机填充(3~10字节，首字节低3位记录填充长度) + 明文 + 7字节0
type QQTea struct {
	block cipher.Block
}

// NewQQTea 创建TEA加解密器
// 参数：
//   - key：16字节密钥
func NewQQTea(key []byte) (*QQTea, error) {
	if len(key) != TeaKeyLen {
		return nil, fmt.Errorf("tea key must be %d bytes, got %d", TeaKeyLen, len(key))
	}
	block, err := tea.NewCipherWithRounds(key, teaRounds)
	if err != nil {
		return nil, fmt.Errorf("create tea cipher: %w", err)
	}
	return &QQTea{block: block}, nil
}

func (t *QQTea) encode(v uint64) uint64 {
	var b [teaBlockSize]byte
	binary.BigEndian.PutUint64(b[:], v)
	t.block.Encrypt(b[:], b[:])
	return binary.BigEndian.Uint64(b[:])
}

func (t *QQTea) decode(v uint64) uint64 {
	var b [teaBlockSize]byte
	binary.BigEndian.PutUint64(b[:], v)
	t.block.Decrypt(b[:], b[:])
	return binary.BigEndian.Uint64(b[:])
}

// Encrypt 加密明文
func (t *QQTea) Encrypt(src []byte) ([]byte, error) {
	fill := 10 - (len(src)+1)%8
	dst := make([]byte, fill+len(src)+7)
	pad, err := GenerateRandomBytes(fill)
	if err != nil {
		return nil, err
	}
	copy(dst, pad)
	dst[0] = byte(fill-3) | 0xF8
	copy(dst[fill:], src)

	var iv1, iv2, holder uint64
	for i := 0; i < len(dst); i += teaBlockSize {
		block := binary.BigEndian.Uint64(dst[i:])
		holder = block ^ iv1
		iv1 = t.encode(holder) ^ iv2
		iv2 = holder
		binary.BigEndian.PutUint64(dst[i:], iv1)
	}
	return dst, nil
}

// Decrypt 解密密文，长度或填充非法时返回ErrInvalidCipherText
func (t *QQTea) Decrypt(data []byte) ([]byte, error) {
	if len(data) < 16 || len(data)%teaBlockSize != 0 {
		return nil, fmt.Errorf("%w: length %d", ErrInvalidCipherText, len(data))
	}
	dst := make([]byte, len(data))
	var iv1, iv2, tmp uint64
	for i := 0; i < len(dst); i += teaBlockSize {
		block := binary.BigEndian.Uint64(data[i:])
		tmp = t.decode(block ^ iv2)
		iv2 = tmp
		binary.BigEndian.PutUint64(dst[i:], tmp^iv1)
		iv1 = block
	}
	start := int(dst[0]&7) + 3
	end := len(dst) - 7
	if start > end {
		return nil, fmt.Errorf("%w: bad padding", ErrInvalidCipherText)
	}
	for _, b := range dst[end:] {
		if b != 0 {
			return nil, fmt.Errorf("%w: bad trailer", ErrInvalidCipherText)
		}
	}
	return dst[start:end], nil
}
