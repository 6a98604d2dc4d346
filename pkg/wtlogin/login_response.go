package wtlogin

import (
	"fmt"
	"maps"
	"time"

	"github.com/lz1998/RICQ/pkg/utils/binary"
	log "github.com/lz1998/RICQ/pkg/utils/logger"
)

// 登录响应状态码
const (
	StatusSuccess           uint8 = 0
	StatusNeedCaptcha       uint8 = 2
	StatusAccountFrozen     uint8 = 40
	StatusDeviceLocked      uint8 = 160
	StatusDeviceLockedAlt   uint8 = 239
	StatusTooManySMSRequest uint8 = 162
	StatusDeviceLockLogin   uint8 = 204
)

// sKey有效期（秒）
const sKeyLifetime = 21600

var nowFunc = time.Now

// LoginResponse 登录响应，每个实现对应一类服务器状态
type LoginResponse interface {
	isLoginResponse()
}

// LoginSuccess 登录成功，字段为nil表示服务器未下发
type LoginSuccess struct {
	RollbackSig        *T161
	RandSeed           []byte
	Ksid               []byte
	AccountInfo        *T11A
	T512               *T512
	T402               []byte
	WtSessionTicketKey []byte
	SrmToken           []byte
	T133               []byte
	EncryptA1          []byte
	Tgt                []byte
	TgtKey             []byte
	UserStKey          []byte
	UserStWebSig       []byte
	SKey               []byte
	SKeyExpiredTime    int64
	D2                 []byte
	D2Key              []byte
	DeviceToken        []byte
}

// ImageCaptcha 图片验证码
type ImageCaptcha struct {
	Sign  []byte
	Image []byte
}

// LoginNeedCaptcha 需要滑块或图片验证码
type LoginNeedCaptcha struct {
	T104         []byte
	VerifyURL    *string
	ImageCaptcha *ImageCaptcha
	// T547 由0x546求解得到
	T547 []byte
}

type LoginAccountFrozen struct{}

// LoginDeviceLocked 设备锁，需要短信或扫码验证
type LoginDeviceLocked struct {
	T104      []byte
	T174      []byte
	T402      []byte
	SMSPhone  *string
	VerifyURL *string
	Message   *string
	RandSeed  []byte
}

type LoginTooManySMSRequest struct{}

// LoginDeviceLockLogin 需要继续发送设备锁登录包
type LoginDeviceLockLogin struct {
	T104     []byte
	T402     []byte
	RandSeed []byte
}

// LoginUnknownStatus 未识别的状态码，保留未消费的TLV供调用方检查
type LoginUnknownStatus struct {
	Status  uint8
	TLVMap  TLVMap
	Message string
}

func (*LoginSuccess) isLoginResponse()          {}
func (*LoginNeedCaptcha) isLoginResponse()      {}
func (LoginAccountFrozen) isLoginResponse()     {}
func (*LoginDeviceLocked) isLoginResponse()     {}
func (LoginTooManySMSRequest) isLoginResponse() {}
func (*LoginDeviceLockLogin) isLoginResponse()  {}
func (*LoginUnknownStatus) isLoginResponse()    {}

// DecodeLoginResponse 按状态码解释登录响应
// 参数：
//   - status：响应状态码
//   - tlvMap：响应TLV，解释过的标签会被移除
//   - encryptKey：0x119的解密密钥
//
// 返回：
//   - 对应状态的LoginResponse
//   - 错误（状态0缺少0x119返回MissingFieldError，结构错误返回DecodeError）
//
// 出错时tlvMap保持不变
func DecodeLoginResponse(status uint8, tlvMap TLVMap, encryptKey []byte) (LoginResponse, error) {
	work := maps.Clone(tlvMap)
	if work == nil {
		work = make(TLVMap)
	}
	resp, err := decodeLoginStatus(status, work, encryptKey)
	if err != nil {
		return nil, err
	}
	for tag := range tlvMap {
		if !work.Has(tag) {
			delete(tlvMap, tag)
		}
	}
	return resp, nil
}

func decodeLoginStatus(status uint8, tlvMap TLVMap, encryptKey []byte) (LoginResponse, error) {
	switch status {
	case StatusSuccess:
		return decodeSuccess(tlvMap, encryptKey)
	case StatusNeedCaptcha:
		return decodeNeedCaptcha(tlvMap)
	case StatusAccountFrozen:
		return LoginAccountFrozen{}, nil
	case StatusDeviceLocked, StatusDeviceLockedAlt:
		return decodeDeviceLocked(tlvMap)
	case StatusTooManySMSRequest:
		return LoginTooManySMSRequest{}, nil
	case StatusDeviceLockLogin:
		resp := &LoginDeviceLockLogin{}
		resp.T104, _ = tlvMap.Take(0x104)
		resp.T402, _ = tlvMap.Take(0x402)
		resp.RandSeed, _ = tlvMap.Take(0x403)
		return resp, nil
	default:
		return decodeUnknownStatus(status, tlvMap)
	}
}

func decodeSuccess(tlvMap TLVMap, encryptKey []byte) (LoginResponse, error) {
	raw, ok := tlvMap.Take(0x119)
	if !ok {
		return nil, &MissingFieldError{Tag: 0x119}
	}
	t119, err := decodeT119(raw, encryptKey)
	if err != nil {
		return nil, err
	}

	resp := &LoginSuccess{
		SKeyExpiredTime: nowFunc().Unix() + sKeyLifetime,
	}
	if v, ok := tlvMap.Take(0x161); ok {
		if resp.RollbackSig, err = decodeT161(v); err != nil {
			return nil, err
		}
	}
	if v, ok := t119.Take(0x11a); ok {
		if resp.AccountInfo, err = readT11A(v); err != nil {
			return nil, err
		}
	}
	if v, ok := t119.Take(0x512); ok {
		if resp.T512, err = readT512(v); err != nil {
			return nil, err
		}
	}
	resp.RandSeed, _ = tlvMap.Take(0x403)
	resp.T402, _ = tlvMap.Take(0x402)
	resp.Ksid, _ = t119.Take(0x108)
	resp.WtSessionTicketKey, _ = t119.Take(0x134)
	resp.SrmToken, _ = t119.Take(0x16a)
	resp.T133, _ = t119.Take(0x133)
	resp.EncryptA1, _ = t119.Take(0x106)
	resp.Tgt, _ = t119.Take(0x10a)
	resp.TgtKey, _ = t119.Take(0x10d)
	resp.UserStKey, _ = t119.Take(0x10e)
	resp.UserStWebSig, _ = t119.Take(0x103)
	resp.SKey, _ = t119.Take(0x120)
	resp.D2, _ = t119.Take(0x143)
	resp.D2Key, _ = t119.Take(0x305)
	resp.DeviceToken, _ = t119.Take(0x322)
	return resp, nil
}

func decodeNeedCaptcha(tlvMap TLVMap) (LoginResponse, error) {
	resp := &LoginNeedCaptcha{}
	resp.T104, _ = tlvMap.Take(0x104)
	resp.VerifyURL = tlvMap.TakeString(0x192)
	if v, ok := tlvMap.Take(0x165); ok {
		r := binary.NewReader(v)
		signLen := r.ReadUint16()
		r.Skip(2)
		sign := r.ReadBytes(int(signLen))
		if err := r.Err(); err != nil {
			return nil, decodeErr("t165", err)
		}
		resp.ImageCaptcha = &ImageCaptcha{Sign: sign, Image: r.ReadAvailable()}
	}
	if v, ok := tlvMap.Take(0x546); ok {
		t547, err := SolvePoW(v)
		if err != nil {
			return nil, err
		}
		resp.T547 = t547
	}
	return resp, nil
}

func decodeDeviceLocked(tlvMap TLVMap) (LoginResponse, error) {
	resp := &LoginDeviceLocked{}
	t174, has174 := tlvMap.Take(0x174)
	t178, has178 := tlvMap.Take(0x178)
	if has174 {
		resp.T174 = t174
		if has178 {
			r := binary.NewReader(t178)
			countryCode := r.ReadStringShort()
			phone := r.ReadStringShort()
			if err := r.Err(); err != nil {
				return nil, decodeErr("t178", err)
			}
			s := fmt.Sprintf("+%s %s", countryCode, phone)
			resp.SMSPhone = &s
		}
	}
	resp.VerifyURL = tlvMap.TakeString(0x204)
	resp.Message = tlvMap.TakeString(0x17e)
	resp.RandSeed, _ = tlvMap.Take(0x403)
	resp.T104, _ = tlvMap.Take(0x104)
	resp.T402, _ = tlvMap.Take(0x402)
	return resp, nil
}

func decodeUnknownStatus(status uint8, tlvMap TLVMap) (LoginResponse, error) {
	resp := &LoginUnknownStatus{Status: status}
	if v, ok := tlvMap.Take(0x146); ok {
		r := binary.NewReader(v)
		r.Skip(4)
		_ = r.ReadStringShort() // title
		msg := r.ReadStringShort()
		if err := r.Err(); err != nil {
			return nil, decodeErr("t146", err)
		}
		resp.Message = msg
	}
	resp.TLVMap = tlvMap
	log.Debugf("[WTLOGIN] 未知登录状态: status=%d, message=%q, tags=%d", status, resp.Message, len(tlvMap))
	return resp, nil
}
