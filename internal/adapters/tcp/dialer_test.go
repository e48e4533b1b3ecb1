package tcp

import (
	"bytes"
	"context"
	"errors"
	"net"
	"strconv"
	"syscall"
	"testing"
	"time"
)

func TestDialer_Addr(t *testing.T) {
	tests := []struct {
		host string
		port int
		want string
	}{
		{"192.168.1.100", 5678, "192.168.1.100:5678"},
		{"camera.local", 52381, "camera.local:52381"},
		{"::1", 5678, "[::1]:5678"},
	}

	for _, tt := range tests {
		if got := NewDialer(tt.host, tt.port).Addr(); got != tt.want {
			t.Errorf("Addr() = %s, want %s", got, tt.want)
		}
	}
}

func TestDialer_Dial(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	got := make(chan []byte, 1)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()
		buf := make([]byte, 16)
		n, _ := conn.Read(buf)
		got <- buf[:n]
	}()

	addr := ln.Addr().(*net.TCPAddr)
	d := NewDialer("127.0.0.1", addr.Port)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	conn, err := d.Dial(ctx)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer conn.Close()

	frame := []byte{0x81, 0x01, 0x06, 0x04, 0xFF}
	if _, err := conn.Write(frame); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	select {
	case b := <-got:
		if !bytes.Equal(b, frame) {
			t.Errorf("server read % X, want % X", b, frame)
		}
	case <-time.After(time.Second):
		t.Fatal("server did not receive the frame")
	}
}

func TestDialer_DialRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	_, portStr, _ := net.SplitHostPort(ln.Addr().String())
	_ = ln.Close()
	port, _ := strconv.Atoi(portStr)

	_, err = NewDialer("127.0.0.1", port).Dial(context.Background())
	if !errors.Is(err, syscall.ECONNREFUSED) {
		t.Errorf("Dial() error = %v, want ECONNREFUSED", err)
	}
}
