package tcp_connection

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w := NewFrameWriter(&buf)
	payloads := [][]byte{[]byte("a"), bytes.Repeat([]byte{0x5a}, 4096), []byte("last")}
	for _, p := range payloads {
		require.NoError(t, w.WriteFrame(p))
	}

	// 长度前缀包含自身4字节
	assert.Equal(t, uint32(5), binary.BigEndian.Uint32(buf.Bytes()[:4]))

	r := NewFrameReader(&buf)
	for _, p := range payloads {
		got, err := r.ReadFrame()
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := r.ReadFrame()
	assert.Equal(t, io.EOF, err)
}

func TestFrame_Rejects(t *testing.T) {
	header := func(n uint32) []byte {
		b := make([]byte, 4)
		binary.BigEndian.PutUint32(b, n)
		return b
	}
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"length below header", header(3), ErrFrameTooShort},
		{"zero length", header(0), ErrFrameTooShort},
		{"empty payload", header(4), ErrEmptyFrame},
		{"too large", header(MaxFrameLen + 1), ErrFrameTooLarge},
		{"truncated payload", append(header(10), 1, 2), io.ErrUnexpectedEOF},
		{"truncated header", []byte{0, 0}, io.ErrUnexpectedEOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewFrameReader(bytes.NewReader(tt.data)).ReadFrame()
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestEncodeFrame_TooLarge(t *testing.T) {
	_, err := EncodeFrame(make([]byte, MaxFrameLen))
	assert.True(t, errors.Is(err, ErrFrameTooLarge))
}

func TestEncodeFrame_Empty(t *testing.T) {
	_, err := EncodeFrame(nil)
	assert.ErrorIs(t, err, ErrEmptyFrame)

	var buf bytes.Buffer
	err = NewFrameWriter(&buf).WriteFrame([]byte{})
	assert.ErrorIs(t, err, ErrEmptyFrame)
	assert.Zero(t, buf.Len())
}

func TestDial_Direct(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	accepted := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		p, err := NewFrameReader(conn).ReadFrame()
		if err == nil {
			accepted <- p
		}
	}()

	conn, err := Dial(context.Background(), &ClientOption{
		Address:   ln.Addr().String(),
		Timeout:   time.Second,
		KeepAlive: true,
	})
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, NewFrameWriter(conn).WriteFrame([]byte("hello")))
	select {
	case p := <-accepted:
		assert.Equal(t, []byte("hello"), p)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not receive frame")
	}
}

func TestDial_InvalidOptions(t *testing.T) {
	_, err := Dial(context.Background(), nil)
	assert.Error(t, err)

	_, err = Dial(context.Background(), &ClientOption{Address: "127.0.0.1:1", Proxy: "ftp://bad"})
	assert.Error(t, err)
}
