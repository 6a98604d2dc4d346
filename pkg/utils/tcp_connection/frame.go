package tcp_connection

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

// EncodeFrame 打包帧：4字节大端长度（包含自身）+ 负载
// 空负载返回ErrEmptyFrame，对端读取时同样会拒绝
func EncodeFrame(payload []byte) ([]byte, error) {
	if len(payload) == 0 {
		return nil, ErrEmptyFrame
	}
	total := FrameHeadLen + len(payload)
	if total > MaxFrameLen {
		return nil, fmt.Errorf("%w: %d", ErrFrameTooLarge, total)
	}
	buf := make([]byte, total)
	binary.BigEndian.PutUint32(buf, uint32(total))
	copy(buf[FrameHeadLen:], payload)
	return buf, nil
}

// FrameReader 从字节流中按长度前缀切分帧，单读者使用
type FrameReader struct {
	r    *bufio.Reader
	head [FrameHeadLen]byte
}

func NewFrameReader(r io.Reader) *FrameReader {
	return &FrameReader{r: bufio.NewReader(r)}
}

// ReadFrame 读取下一帧负载
// 返回：
//   - 负载（长度为前缀值-4）
//   - 错误（读失败、长度小于4、负载为空或超长时，流应视为已关闭）
func (fr *FrameReader) ReadFrame() ([]byte, error) {
	if _, err := io.ReadFull(fr.r, fr.head[:]); err != nil {
		return nil, err
	}
	total := binary.BigEndian.Uint32(fr.head[:])
	if total < FrameHeadLen {
		return nil, fmt.Errorf("%w: %d", ErrFrameTooShort, total)
	}
	if total == FrameHeadLen {
		return nil, ErrEmptyFrame
	}
	if total > MaxFrameLen {
		return nil, fmt.Errorf("%w: %d", ErrFrameTooLarge, total)
	}
	payload := make([]byte, total-FrameHeadLen)
	if _, err := io.ReadFull(fr.r, payload); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	return payload, nil
}

// FrameWriter 将负载打包后整帧写出
type FrameWriter struct {
	w io.Writer
}

func NewFrameWriter(w io.Writer) *FrameWriter {
	return &FrameWriter{w: w}
}

// WriteFrame 单次Write写出完整帧
func (fw *FrameWriter) WriteFrame(payload []byte) error {
	buf, err := EncodeFrame(payload)
	if err != nil {
		return err
	}
	_, err = fw.w.Write(buf)
	return err
}
