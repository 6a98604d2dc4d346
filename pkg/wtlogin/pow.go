package wtlogin

import (
	"bytes"
	"context"
	"crypto/sha256"
	"math/big"
	"time"

	"github.com/lz1998/RICQ/pkg/utils/binary"
	log "github.com/lz1998/RICQ/pkg/utils/logger"
)

const (
	powTypeSHA256 = 2
	powHashLen    = sha256.Size
	// 每隔多少次迭代检查一次ctx
	powCheckInterval = 1 << 12
)

// PoWChallenge 0x546携带的工作量证明挑战
type PoWChallenge struct {
	A      byte
	Type   byte
	C      byte
	Solved bool
	E      uint16
	F      uint16
	Src    []byte
	Tgt    []byte
	Cpy    []byte
}

// PoWSolution 求解结果，仅在Solved为true时有效
type PoWSolution struct {
	Dst       []byte
	ElapsedMs uint32
	Count     uint32
}

// ParsePoWChallenge 解析0x546
func ParsePoWChallenge(data []byte) (*PoWChallenge, error) {
	r := binary.NewReader(data)
	c := &PoWChallenge{
		A:    r.ReadUint8(),
		Type: r.ReadUint8(),
		C:    r.ReadUint8(),
	}
	c.Solved = r.ReadUint8() != 0
	c.E = r.ReadUint16()
	c.F = r.ReadUint16()
	c.Src = r.ReadBytesShort()
	c.Tgt = r.ReadBytesShort()
	c.Cpy = r.ReadBytesShort()
	if err := r.Err(); err != nil {
		return nil, decodeErr("t546", err)
	}
	return c, nil
}

// Encode 编码为0x547格式：原字段 + (已求解时) 结果值、耗时毫秒、迭代次数
func (c *PoWChallenge) Encode(sol *PoWSolution) []byte {
	w := binary.NewWriter()
	_ = w.WriteByte(c.A)
	_ = w.WriteByte(c.Type)
	_ = w.WriteByte(c.C)
	w.WriteBool(c.Solved)
	w.WriteUint16(c.E)
	w.WriteUint16(c.F)
	w.WriteBytesShort(c.Src)
	w.WriteBytesShort(c.Tgt)
	w.WriteBytesShort(c.Cpy)
	if c.Solved {
		if sol == nil {
			sol = &PoWSolution{}
		}
		w.WriteBytesShort(sol.Dst)
		w.WriteUint32(sol.ElapsedMs)
		w.WriteUint32(sol.Count)
	}
	return w.Bytes()
}

// SolvePoW 将0x546转换为0x547
// 计算量没有上限，调用方应在独立的goroutine中执行
func SolvePoW(data []byte) ([]byte, error) {
	return SolvePoWContext(context.Background(), data)
}

// SolvePoWContext 同SolvePoW，ctx取消时返回ctx.Err()
// 类型不为2或目标哈希不是32字节时不求解，标志位保持输入值
func SolvePoWContext(ctx context.Context, data []byte) ([]byte, error) {
	c, err := ParsePoWChallenge(data)
	if err != nil {
		return nil, err
	}
	if c.Type != powTypeSHA256 || len(c.Tgt) != powHashLen {
		return c.Encode(nil), nil
	}

	start := time.Now()
	n := new(big.Int).SetBytes(c.Src)
	one := big.NewInt(1)
	var cnt uint32
	for {
		sum := sha256.Sum256(bigBytes(n))
		if bytes.Equal(sum[:], c.Tgt) {
			break
		}
		n.Add(n, one)
		cnt++
		if cnt%powCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
	}
	c.Solved = true
	sol := &PoWSolution{
		Dst:       bigBytes(n),
		ElapsedMs: uint32(time.Since(start).Milliseconds()),
		Count:     cnt,
	}
	log.Debugf("[WTLOGIN] 工作量证明已求解: count=%d, elapsed=%dms", sol.Count, sol.ElapsedMs)
	return c.Encode(sol), nil
}

// bigBytes 大端最小编码，0编码为单字节0
func bigBytes(n *big.Int) []byte {
	if n.Sign() == 0 {
		return []byte{0}
	}
	return n.Bytes()
}
