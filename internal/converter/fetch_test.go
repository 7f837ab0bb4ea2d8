package converter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func serveJSON(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   Kind
	}{
		{"OK array", http.StatusOK, `[{"a":1}]`, KindUnknown},
		{"Created object", http.StatusCreated, `{"a":1}`, KindUnknown},
		{"Not found", http.StatusNotFound, `{"error":"missing"}`, KindNetwork},
		{"Server error", http.StatusInternalServerError, `oops`, KindNetwork},
		{"Invalid JSON", http.StatusOK, `<html>login</html>`, KindParse},
		{"Empty body", http.StatusOK, ``, KindParse},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serveJSON(t, tt.status, tt.body)

			v, err := Fetch(context.Background(), srv.Client(), srv.URL)
			if got := KindOf(err); got != tt.kind {
				t.Fatalf("KindOf(%v) = %s; want %s", err, got, tt.kind)
			}
			if err == nil && v == nil {
				t.Error("expected a decoded value")
			}
		})
	}
}

func TestFetch_ConnectionRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := Fetch(context.Background(), nil, url)
	if KindOf(err) != KindNetwork {
		t.Fatalf("KindOf(%v) = %s; want network", err, KindOf(err))
	}
}

func TestFetch_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()

	client := &http.Client{Timeout: 50 * time.Millisecond}
	_, err := Fetch(context.Background(), client, srv.URL)
	if KindOf(err) != KindNetwork {
		t.Fatalf("KindOf(%v) = %s; want network", err, KindOf(err))
	}
}

func TestFetch_Canceled(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, `[]`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Fetch(ctx, srv.Client(), srv.URL)
	if KindOf(err) != KindCanceled {
		t.Fatalf("KindOf(%v) = %s; want canceled", err, KindOf(err))
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected error to wrap context.Canceled, got %v", err)
	}
}
