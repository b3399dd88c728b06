package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/hiverapp/hiver/internal/relationship"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "self reference",
			err:      relationship.ErrSelfReference,
			expected: ErrInvalidParams,
		},
		{
			name:     "unauthenticated",
			err:      relationship.ErrUnauthenticated,
			expected: ErrUnauthenticated,
		},
		{
			name:     "forbidden",
			err:      relationship.ErrForbidden,
			expected: ErrForbidden,
		},
		{
			name:     "conflict",
			err:      relationship.ErrConflict,
			expected: ErrConflict,
		},
		{
			name:     "not found",
			err:      relationship.ErrNotFound,
			expected: ErrNotFound,
		},
		{
			name:     "store unavailable",
			err:      relationship.ErrStoreUnavailable,
			expected: ErrServerError,
		},
		{
			name:     "wrapped domain error",
			err:      fmt.Errorf("request_connection: %w", relationship.ErrConflict),
			expected: ErrConflict,
		},
		{
			name:     "api error passes through",
			err:      NewError(ErrNotFound, "hive not found"),
			expected: ErrNotFound,
		},
		{
			name:     "unknown error",
			err:      errors.New("boom"),
			expected: ErrServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _ := mapError(tt.err)
			if code != tt.expected {
				t.Errorf("mapError(%v) code = %d, want %d", tt.err, code, tt.expected)
			}
		})
	}
}

func TestMapErrorMessages(t *testing.T) {
	_, msg := mapError(relationship.ErrConflict)
	if msg != relationship.ErrConflict.Error() {
		t.Errorf("expected domain message, got %q", msg)
	}

	_, msg = mapError(errors.New("secret database details"))
	if msg != "Server error" {
		t.Errorf("unknown errors must not leak details, got %q", msg)
	}
}

func newTestServer(t *testing.T, method string, handler MethodHandler) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	h := NewJSONRPCHandler()
	h.RegisterMethod(method, handler)
	engine.POST("/", h.Handle)
	server := httptest.NewServer(engine)
	t.Cleanup(server.Close)
	return server
}

func call(t *testing.T, url, body string) JSONRPCResponse {
	t.Helper()
	resp, err := http.Post(url, "application/json", bytes.NewBufferString(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()

	var out JSONRPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return out
}

func TestHandleSuccess(t *testing.T) {
	server := newTestServer(t, "hiver_api.echo", func(c *gin.Context, params json.RawMessage) (interface{}, error) {
		return gin.H{"ok": true}, nil
	})

	out := call(t, server.URL, `{"jsonrpc":"2.0","id":1,"method":"hiver_api.echo","params":{}}`)
	if out.Error != nil {
		t.Fatalf("unexpected error: %+v", out.Error)
	}
	if out.JSONRPC != "2.0" {
		t.Errorf("jsonrpc = %q, want 2.0", out.JSONRPC)
	}
}

func TestHandleMethodNotFound(t *testing.T) {
	server := newTestServer(t, "hiver_api.echo", func(c *gin.Context, params json.RawMessage) (interface{}, error) {
		return nil, nil
	})

	out := call(t, server.URL, `{"jsonrpc":"2.0","id":1,"method":"hiver_api.missing","params":{}}`)
	if out.Error == nil || out.Error.Code != ErrMethodNotFound {
		t.Fatalf("expected method-not-found error, got %+v", out.Error)
	}
}

func TestHandleInvalidVersion(t *testing.T) {
	server := newTestServer(t, "hiver_api.echo", func(c *gin.Context, params json.RawMessage) (interface{}, error) {
		return nil, nil
	})

	out := call(t, server.URL, `{"jsonrpc":"1.0","id":1,"method":"hiver_api.echo"}`)
	if out.Error == nil || out.Error.Code != ErrInvalidRequest {
		t.Fatalf("expected invalid-request error, got %+v", out.Error)
	}
}

func TestHandleDomainError(t *testing.T) {
	server := newTestServer(t, "hiver_api.follow", func(c *gin.Context, params json.RawMessage) (interface{}, error) {
		return nil, relationship.ErrSelfReference
	})

	out := call(t, server.URL, `{"jsonrpc":"2.0","id":7,"method":"hiver_api.follow","params":{}}`)
	if out.Error == nil || out.Error.Code != ErrInvalidParams {
		t.Fatalf("expected invalid-params error, got %+v", out.Error)
	}
}

func TestDecodeParams(t *testing.T) {
	var p struct {
		ArtistID string `json:"artist_id"`
	}
	if err := decodeParams(json.RawMessage(`{"artist_id":"a1"}`), &p); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.ArtistID != "a1" {
		t.Errorf("artist_id = %q, want a1", p.ArtistID)
	}

	if err := decodeParams(nil, &p); err == nil {
		t.Error("expected error for missing params")
	}
	if err := decodeParams(json.RawMessage(`{`), &p); err == nil {
		t.Error("expected error for malformed params")
	}

	var apiErr *Error
	err := decodeParams(json.RawMessage(`{`), &p)
	if !errors.As(err, &apiErr) || apiErr.Code != ErrInvalidParams {
		t.Errorf("malformed params should map to invalid-params, got %v", err)
	}
}
