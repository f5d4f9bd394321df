package geocode

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestForwardParsesCoordinates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"features":[{"geometry":{"coordinates":[-121.76,46.78]}}]}`))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, Token: "test-token"})
	point, err := client.Forward(context.Background(), "Ashford, Washington")
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if point.Longitude != -121.76 || point.Latitude != 46.78 {
		t.Fatalf("unexpected point %+v", point)
	}
}

func TestForwardRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"features":[{"geometry":{"coordinates":[2.35,48.85]}}]}`))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, Token: "t"})
	point, err := client.Forward(context.Background(), "Paris")
	if err != nil {
		t.Fatalf("forward: %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Fatalf("expected retry, saw %d calls", got)
	}
	if point.Latitude != 48.85 {
		t.Fatalf("unexpected point %+v", point)
	}
}

func TestForwardEmptyResultIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"features":[]}`))
	}))
	defer srv.Close()

	client := New(Config{BaseURL: srv.URL, Token: "t"})
	if _, err := client.Forward(context.Background(), "Nowhereville"); err == nil {
		t.Fatal("expected error for empty result")
	}
}
