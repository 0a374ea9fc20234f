package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ViaEstate/feed-ingest/internal/adapters/openai"
)

func completionServer(t *testing.T, content string, failures int32) (*httptest.Server, *int32) {
	t.Helper()
	var hits int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			w.WriteHeader(404)
			return
		}
		if atomic.AddInt32(&hits, 1) <= failures {
			w.WriteHeader(500)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	}))
	return ts, &hits
}

func TestDetectLanguage(t *testing.T) {
	ts, _ := completionServer(t, " ES\n", 0)
	defer ts.Close()

	cl, err := openai.New(ts.URL, "test-key", "test-model", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got, err := cl.DetectLanguage(ctx, "Chalet con piscina cerca de la playa")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != "es" {
		t.Fatalf("expected lowercased trimmed code, got %q", got)
	}
}

func TestTranslate_RetriesThenSuccess(t *testing.T) {
	ts, hits := completionServer(t, "Fristående villa med pool", 2)
	defer ts.Close()

	cl, err := openai.New(ts.URL, "test-key", "", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	got, err := cl.Translate(ctx, "Detached villa with pool", "sv", "en")
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got != "Fristående villa med pool" {
		t.Fatalf("unexpected translation: %q", got)
	}
	if atomic.LoadInt32(hits) < 3 {
		t.Fatalf("expected at least 3 calls due to retries, got %d", *hits)
	}
}

func TestTranslate_NoopCases(t *testing.T) {
	// server that would fail the test if called
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unexpected external call")
	}))
	defer ts.Close()

	cl, err := openai.New(ts.URL, "test-key", "", 100)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	if got, err := cl.Translate(context.Background(), "", "sv", "en"); err != nil || got != "" {
		t.Fatalf("empty text: %q %v", got, err)
	}
	if got, err := cl.Translate(context.Background(), "same", "en", "en"); err != nil || got != "same" {
		t.Fatalf("same locale: %q %v", got, err)
	}
}

func TestNew_RequiresKey(t *testing.T) {
	if _, err := openai.New("https://api.example.com/v1", "", "", 5); err == nil {
		t.Fatal("expected error for empty key")
	}
}
