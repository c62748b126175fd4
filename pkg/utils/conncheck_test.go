package utils

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractFromDBURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want string
	}{
		{"with port", "postgresql://user:pw@db.local:6543/rts", "db.local:6543"},
		{"default port", "postgresql://user:pw@db.local/rts", "db.local:5432"},
		{"short scheme", "postgres://user@localhost:5432/rts?sslmode=disable", "localhost:5432"},
		{"no credentials", "postgresql://localhost/rts", "localhost:5432"},
		{"other scheme", "mysql://user@localhost/rts", ""},
		{"garbage", "not a url", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractFromDBURL(tt.url))
		})
	}
}

func TestWaitForTCP(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	assert.NoError(t, WaitForTCP(l.Addr().String(), time.Second))
}

func TestWaitForTCPTimeout(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := l.Addr().String()
	l.Close()
	assert.Error(t, WaitForTCP(addr, 300*time.Millisecond))
}
