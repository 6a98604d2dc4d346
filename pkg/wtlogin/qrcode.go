package wtlogin

import (
	"fmt"

	"github.com/lz1998/RICQ/pkg/utils/binary"
)

// trans_emp 子命令
const (
	TransEmpFetchQRCode uint16 = 0x31
	TransEmpQueryResult uint16 = 0x12
)

// 0x12 查询结果码
const (
	qrCodeWaitingForScan    = 0x30
	qrCodeWaitingForConfirm = 0x35
	qrCodeCanceled          = 0x36
	qrCodeTimeout           = 0x11
)

// QRCodeState 扫码登录状态，每次轮询响应对应唯一一个状态
type QRCodeState interface {
	isQRCodeState()
}

// QRCodeImageFetch 二维码图片
type QRCodeImageFetch struct {
	ImageData []byte
	Sig       []byte
}

type QRCodeWaitingForScan struct{}

type QRCodeWaitingForConfirm struct{}

type QRCodeTimeout struct{}

// QRCodeConfirmed 扫码确认，携带继续常规登录所需的凭据
type QRCodeConfirmed struct {
	Uin         int64
	TmpPwd      []byte
	TmpNoPicSig []byte
	TgtQR       []byte
	TgtgtKey    []byte
}

type QRCodeCanceled struct{}

func (*QRCodeImageFetch) isQRCodeState()       {}
func (QRCodeWaitingForScan) isQRCodeState()    {}
func (QRCodeWaitingForConfirm) isQRCodeState() {}
func (QRCodeTimeout) isQRCodeState()           {}
func (*QRCodeConfirmed) isQRCodeState()        {}
func (QRCodeCanceled) isQRCodeState()          {}

// IsTerminal 终态（确认、超时、取消）之后不再轮询
func IsTerminal(s QRCodeState) bool {
	switch s.(type) {
	case *QRCodeConfirmed, QRCodeTimeout, QRCodeCanceled:
		return true
	default:
		return false
	}
}

// DecodeTransEmpResponse 解析已解密的trans_emp响应体
// 参数：
//   - subCommand：0x31（获取二维码）或0x12（查询扫码结果）
//   - body：响应体
func DecodeTransEmpResponse(subCommand uint16, body []byte) (QRCodeState, error) {
	r := binary.NewReader(body)
	switch subCommand {
	case TransEmpFetchQRCode:
		r.Skip(2)
		r.Skip(4)
		code := r.ReadUint8()
		if err := r.Err(); err != nil {
			return nil, decodeErr("trans_emp 0x31", err)
		}
		if code != 0 {
			return nil, fmt.Errorf("trans_emp 0x31: server code %d", code)
		}
		sig := r.ReadBytesShort()
		r.Skip(2)
		if err := r.Err(); err != nil {
			return nil, decodeErr("trans_emp 0x31", err)
		}
		m, err := ReadTLVMap(r)
		if err != nil {
			return nil, err
		}
		img, ok := m.Take(0x17)
		if !ok {
			return nil, &MissingFieldError{Tag: 0x17}
		}
		return &QRCodeImageFetch{ImageData: img, Sig: sig}, nil

	case TransEmpQueryResult:
		varLen := int(r.ReadUint16())
		if varLen > 0 {
			varLen--
			if r.ReadUint8() == 2 {
				r.Skip(8)
				varLen -= 8
			}
		}
		if varLen > 0 {
			r.Skip(varLen)
		}
		r.Skip(4)
		code := r.ReadUint8()
		if err := r.Err(); err != nil {
			return nil, decodeErr("trans_emp 0x12", err)
		}
		switch code {
		case 0:
		case qrCodeWaitingForScan:
			return QRCodeWaitingForScan{}, nil
		case qrCodeWaitingForConfirm:
			return QRCodeWaitingForConfirm{}, nil
		case qrCodeCanceled:
			return QRCodeCanceled{}, nil
		case qrCodeTimeout:
			return QRCodeTimeout{}, nil
		default:
			return nil, fmt.Errorf("trans_emp 0x12: unknown code 0x%x", code)
		}
		uin := r.ReadInt64()
		r.Skip(4)
		r.Skip(2)
		if err := r.Err(); err != nil {
			return nil, decodeErr("trans_emp 0x12", err)
		}
		m, err := ReadTLVMap(r)
		if err != nil {
			return nil, err
		}
		confirmed := &QRCodeConfirmed{Uin: uin}
		for _, tag := range []uint16{0x18, 0x19, 0x65, 0x1e} {
			if !m.Has(tag) {
				return nil, &MissingFieldError{Tag: tag}
			}
		}
		confirmed.TmpPwd, _ = m.Take(0x18)
		confirmed.TmpNoPicSig, _ = m.Take(0x19)
		confirmed.TgtgtKey, _ = m.Take(0x1e)
		confirmed.TgtQR, _ = m.Take(0x65)
		return confirmed, nil

	default:
		return nil, fmt.Errorf("trans_emp: unknown sub command 0x%x", subCommand)
	}
}
