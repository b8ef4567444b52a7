package geo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fallback = "Seoul, South Korea"

func TestIsPublic(t *testing.T) {
	for _, ip := range []string{"127.0.0.1", "::1", "10.1.2.3", "192.168.0.10", "172.16.5.4", "169.254.1.1", "0.0.0.0", "", "localhost", "999.1.1.1"} {
		assert.False(t, IsPublic(ip), ip)
	}
	for _, ip := range []string{"8.8.8.8", "2001:4860:4860::8888", "172.32.0.1"} {
		assert.True(t, IsPublic(ip), ip)
	}
}

func TestClientLocate(t *testing.T) {
	responses := map[string]string{
		"/1.1.1.1/json/": `{"city":"Sydney","country_name":"Australia"}`,
		"/2.2.2.2/json/": `{"city":"Unknown","country_name":"France"}`,
		"/3.3.3.3/json/": `{"city":"Lyon","country_name":""}`,
		"/4.4.4.4/json/": `{"city":"","country_name":"Unknown"}`,
		"/5.5.5.5/json/": `{"error":true,"reason":"RateLimited"}`,
	}
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, ok := responses[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL+"/", time.Second, fallback)
	ctx := context.Background()

	tests := []struct {
		ip   string
		want string
	}{
		{"1.1.1.1", "Sydney, Australia"},
		{"2.2.2.2", "Unknown, France"},
		{"3.3.3.3", "Lyon, Unknown"},
		{"4.4.4.4", fallback},
		{"5.5.5.5", fallback},
		{"6.6.6.6", fallback},
	}
	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Locate(ctx, tt.ip))
		})
	}

	before := hits.Load()
	assert.Equal(t, fallback, c.Locate(ctx, "192.168.1.1"))
	assert.Equal(t, before, hits.Load(), "private addresses are not looked up")
}

func TestClientLocateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		_, _ = w.Write([]byte(`{"city":"Late","country_name":"Nowhere"}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, 50*time.Millisecond, fallback)
	require.Equal(t, fallback, c.Locate(context.Background(), "8.8.8.8"))
}

func TestStatic(t *testing.T) {
	assert.Equal(t, fallback, Static(fallback).Locate(context.Background(), "8.8.8.8"))
}
