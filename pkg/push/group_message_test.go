package push

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseGroupMessage(t *testing.T) {
	parts := []*GroupMessagePart{
		{Seq: 3, Rand: 30, PkgIndex: 2, GroupCode: 2, GroupName: "late", Elems: [][]byte{[]byte("c")}},
		{Seq: 1, Rand: 10, PkgIndex: 0, GroupCode: 1, GroupName: "first", GroupCard: "card", FromUin: 9, Time: 100, Elems: [][]byte{[]byte("a")}},
		{Seq: 2, Rand: 20, PkgIndex: 1, GroupCode: 2, GroupName: "mid", Elems: [][]byte{[]byte("b")}},
	}

	msg := ParseGroupMessage(parts)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, msg.Elements)
	assert.Equal(t, []int32{1, 2, 3}, msg.Seqs)
	assert.Equal(t, []int32{10, 20, 30}, msg.Rands)
	assert.Equal(t, int64(1), msg.GroupCode)
	assert.Equal(t, "first", msg.GroupName)
	assert.Equal(t, "card", msg.GroupCard)
	assert.Equal(t, int64(9), msg.FromUin)
	assert.Equal(t, int32(100), msg.Time)
	// 入参顺序不变
	assert.Equal(t, int32(2), parts[0].PkgIndex)
}

func TestParseGroupMessage_KeepsEmptyElements(t *testing.T) {
	msg := ParseGroupMessage([]*GroupMessagePart{
		{PkgIndex: 0, Elems: [][]byte{{}, []byte("x")}},
	})
	assert.Len(t, msg.Elements, 2)
}

func TestGroupMessageBuilder(t *testing.T) {
	b := NewGroupMessageBuilder()

	msg, ok := b.Add(&GroupMessagePart{PkgNum: 1, Elems: [][]byte{[]byte("single")}})
	require.True(t, ok)
	assert.Equal(t, [][]byte{[]byte("single")}, msg.Elements)

	part := func(idx int32, elem string) *GroupMessagePart {
		return &GroupMessagePart{PkgNum: 3, PkgIndex: idx, DivSeq: 77, Elems: [][]byte{[]byte(elem)}}
	}
	_, ok = b.Add(part(2, "c"))
	assert.False(t, ok)
	_, ok = b.Add(part(0, "a"))
	assert.False(t, ok)
	_, ok = b.Add(part(0, "a"))
	assert.False(t, ok, "duplicate part")
	msg, ok = b.Add(part(1, "b"))
	require.True(t, ok)
	assert.Equal(t, [][]byte{[]byte("a"), []byte("b"), []byte("c")}, msg.Elements)
	assert.Equal(t, 0, b.pending.Len())
}

func TestDecodeGroupMessagePart(t *testing.T) {
	var groupInfo []byte
	groupInfo = pbVarint(groupInfo, 1, 12345)
	groupInfo = pbString(groupInfo, 4, "card")
	groupInfo = pbString(groupInfo, 8, "group")
	var head []byte
	head = pbVarint(head, 1, 111)
	head = pbVarint(head, 5, 42)
	head = pbVarint(head, 6, 1700000000)
	head = pbBytes(head, 9, groupInfo)
	var content []byte
	content = pbVarint(content, 1, 2)
	content = pbVarint(content, 2, 1)
	content = pbVarint(content, 3, 88)
	var richText []byte
	richText = pbBytes(richText, 1, pbVarint(nil, 3, 5555))
	richText = pbBytes(richText, 2, []byte{0x0a, 0x00})
	richText = pbBytes(richText, 2, []byte{})
	var msg []byte
	msg = pbBytes(msg, 1, head)
	msg = pbBytes(msg, 2, content)
	msg = pbBytes(msg, 3, pbBytes(nil, 1, richText))

	part, err := DecodeGroupMessagePart(pbBytes(nil, 1, msg))
	require.NoError(t, err)
	assert.Equal(t, &GroupMessagePart{
		Seq: 42, Rand: 5555, GroupCode: 12345, FromUin: 111, Time: 1700000000,
		PkgNum: 2, PkgIndex: 1, DivSeq: 88, GroupName: "group", GroupCard: "card",
		Elems: [][]byte{{0x0a, 0x00}, {}},
	}, part)
}
