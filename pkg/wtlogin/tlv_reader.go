package wtlogin

import (
	"github.com/lz1998/RICQ/pkg/utils/binary"
	"github.com/lz1998/RICQ/pkg/utils/crypto"
)

// T161 回滚签名块
type T161 struct {
	T172 []byte
	T173 []byte
	T17F []byte
}

// T11A 账号资料
type T11A struct {
	FaceID uint16
	Age    uint8
	Gender uint8
	Nick   string
}

// T512 各域名对应的pskey与pt4token
type T512 struct {
	PsKeyMap    map[string][]byte
	Pt4TokenMap map[string][]byte
}

// decodeT119 使用encryptKey解密0x119并解析其中的嵌套TLV
func decodeT119(data, encryptKey []byte) (TLVMap, error) {
	c, err := crypto.NewQQTea(encryptKey)
	if err != nil {
		return nil, decodeErr("t119 key", err)
	}
	plain, err := c.Decrypt(data)
	if err != nil {
		return nil, decodeErr("t119", err)
	}
	return ReadCountedTLVMap(plain)
}

func decodeT161(data []byte) (*T161, error) {
	m, err := ReadCountedTLVMap(data)
	if err != nil {
		return nil, err
	}
	t := &T161{}
	t.T172, _ = m.Take(0x172)
	t.T173, _ = m.Take(0x173)
	t.T17F, _ = m.Take(0x17f)
	return t, nil
}

func readT11A(data []byte) (*T11A, error) {
	r := binary.NewReader(data)
	t := &T11A{
		FaceID: r.ReadUint16(),
		Age:    r.ReadUint8(),
		Gender: r.ReadUint8(),
	}
	limit := r.ReadUint8()
	t.Nick = r.ReadStringLimit(int(limit))
	if err := r.Err(); err != nil {
		return nil, decodeErr("t11a", err)
	}
	return t, nil
}

func readT512(data []byte) (*T512, error) {
	r := binary.NewReader(data)
	t := &T512{
		PsKeyMap:    make(map[string][]byte),
		Pt4TokenMap: make(map[string][]byte),
	}
	n := int(r.ReadUint16())
	for i := 0; i < n && r.Err() == nil; i++ {
		domain := r.ReadStringShort()
		psKey := r.ReadBytesShort()
		pt4Token := r.ReadBytesShort()
		if len(psKey) > 0 {
			t.PsKeyMap[domain] = psKey
		}
		if len(pt4Token) > 0 {
			t.Pt4TokenMap[domain] = pt4Token
		}
	}
	if err := r.Err(); err != nil {
		return nil, decodeErr("t512", err)
	}
	return t, nil
}
