package push

import (
	"errors"
	"testing"

	"github.com/lz1998/RICQ/pkg/utils/binary"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func transMsg(msgType uint64, data []byte) []byte {
	var b []byte
	b = pbVarint(b, 1, 12345)
	b = pbVarint(b, 2, 999)
	b = pbVarint(b, 3, msgType)
	b = pbVarint(b, 5, 42)
	b = pbVarint(b, 6, 7777)
	b = pbVarint(b, 7, 1700000000)
	return pbBytes(b, 10, data)
}

func memberData(target uint32, typ byte, operator uint32) []byte {
	w := binary.NewWriter()
	w.WriteUint32(0)
	_ = w.WriteByte(0)
	w.WriteUint32(target)
	_ = w.WriteByte(typ)
	w.WriteUint32(operator)
	return w.Bytes()
}

func TestDecodePushTrans_Member(t *testing.T) {
	operator := int64(222)
	tests := []struct {
		name string
		typ  byte
		want PushTransInfo
	}{
		{"leave", 0x02, &GroupLeave{GroupCode: 12345, MemberUin: 111}},
		{"leave alt", 0x82, &GroupLeave{GroupCode: 12345, MemberUin: 111}},
		{"kicked", 0x03, &GroupLeave{GroupCode: 12345, MemberUin: 111, OperatorUin: &operator}},
		{"kicked alt", 0x83, &GroupLeave{GroupCode: 12345, MemberUin: 111, OperatorUin: &operator}},
		{"disband", 0x01, &GroupDisband{GroupCode: 12345, OperatorUin: 222}},
		{"disband alt", 0x81, &GroupDisband{GroupCode: 12345, OperatorUin: 222}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trans, err := DecodePushTrans(transMsg(34, memberData(111, tt.typ, 222)))
			require.NoError(t, err)
			assert.Equal(t, DedupKey{Seq: 42, UID: 7777}, trans.Key())
			assert.Equal(t, int32(1700000000), trans.MsgTime)
			assert.Equal(t, tt.want, trans.Info)
		})
	}
}

func TestDecodePushTrans_Permission(t *testing.T) {
	build := func(perm byte) []byte {
		w := binary.NewWriter()
		w.Write(make([]byte, 5))
		_ = w.WriteByte(1)
		w.WriteUint32(111)
		_ = w.WriteByte(perm)
		return w.Bytes()
	}

	trans, err := DecodePushTrans(transMsg(44, build(1)))
	require.NoError(t, err)
	assert.Equal(t, &MemberPermissionChange{GroupCode: 12345, MemberUin: 111, NewPermission: PermissionAdministrator}, trans.Info)

	trans, err = DecodePushTrans(transMsg(44, build(0)))
	require.NoError(t, err)
	assert.Equal(t, PermissionMember, trans.Info.(*MemberPermissionChange).NewPermission)
}

func TestDecodePushTrans_Errors(t *testing.T) {
	_, err := DecodePushTrans(transMsg(99, nil))
	assert.True(t, errors.Is(err, ErrUnknownTransType))

	_, err = DecodePushTrans(transMsg(34, memberData(1, 0x7f, 2)))
	assert.True(t, errors.Is(err, ErrUnknownTransType))

	_, err = DecodePushTrans(transMsg(34, []byte{1, 2, 3}))
	assert.True(t, errors.Is(err, ErrMalformed))

	_, err = DecodePushTrans(pbVarint(nil, 3, 34))
	assert.True(t, errors.Is(err, ErrMalformed))
}
