package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ViaEstate/feed-ingest/internal/domain"
)

// translation fan-out is parallel, so the fakes lock their counters
type fakeTranslator struct {
	mu        sync.Mutex
	lang      string
	langErr   error
	failFor   string // target locale that fails
	detects   int
	translate int
}

func (f *fakeTranslator) DetectLanguage(ctx context.Context, text string) (string, error) {
	f.mu.Lock()
	f.detects++
	f.mu.Unlock()
	return f.lang, f.langErr
}

func (f *fakeTranslator) Translate(ctx context.Context, text, target, source string) (string, error) {
	f.mu.Lock()
	f.translate++
	f.mu.Unlock()
	if target == f.failFor {
		return "", errors.New("remote 503")
	}
	return "[" + target + "] " + text, nil
}

func (f *fakeTranslator) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.detects, f.translate
}

type memCache struct {
	mu    sync.Mutex
	store map[string]string
}

func (c *memCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	*(dst.(*string)) = v
	return true, nil
}

func (c *memCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string]string{}
	}
	c.store[key] = v.(string)
	return nil
}

func (c *memCache) Del(ctx context.Context, key string) error { return nil }

func variantFor(vs []domain.LocaleVariant, locale string) *domain.LocaleVariant {
	for i := range vs {
		if vs[i].Locale == locale {
			return &vs[i]
		}
	}
	return nil
}

func TestVariants_SourceLocaleVerbatim(t *testing.T) {
	tr := &fakeTranslator{lang: "en"}
	l := NewLocalizer(tr, nil, []string{"en", "sv", "nb", "da", "fi"}, 60)

	vs := l.Variants(context.Background(), "r1", "Sunny flat", "Bright and close to the beach")
	if len(vs) != 5 {
		t.Fatalf("expected 5 variants, got %d", len(vs))
	}
	en := variantFor(vs, "en")
	if en == nil || en.Title != "Sunny flat" || en.Description != "Bright and close to the beach" {
		t.Fatalf("source variant must be verbatim: %+v", en)
	}
	if !en.Translated {
		t.Fatal("source variant should not be flagged for review")
	}
	sv := variantFor(vs, "sv")
	if sv == nil || !strings.HasPrefix(sv.Title, "[sv] ") {
		t.Fatalf("sv variant not translated: %+v", sv)
	}
	// 4 non-source locales x (title + description)
	if _, n := tr.counts(); n != 8 {
		t.Fatalf("expected 8 translation calls, got %d", n)
	}
}

func TestVariants_SourceOutsideTargetSet(t *testing.T) {
	tr := &fakeTranslator{lang: "es"}
	l := NewLocalizer(tr, nil, []string{"en", "sv", "nb", "da", "fi"}, 60)

	vs := l.Variants(context.Background(), "r2", "Chalet con piscina", "Cerca de la playa")
	es := variantFor(vs, "es")
	if es == nil || es.Title != "Chalet con piscina" || es.Description != "Cerca de la playa" {
		t.Fatalf("es variant must keep the original text exactly: %+v", es)
	}
	en := variantFor(vs, "en")
	if en == nil || en.Title == "Chalet con piscina" {
		t.Fatalf("en variant should be translated: %+v", en)
	}
}

func TestVariants_TranslationFailureFallsBack(t *testing.T) {
	tr := &fakeTranslator{lang: "es", failFor: "sv"}
	l := NewLocalizer(tr, nil, []string{"en", "sv"}, 60)

	vs := l.Variants(context.Background(), "r3", "Chalet", "Cerca de la playa")
	sv := variantFor(vs, "sv")
	if sv == nil || sv.Title != "Chalet" || sv.Description != "Cerca de la playa" {
		t.Fatalf("sv should fall back to source text: %+v", sv)
	}
	if sv.Translated {
		t.Fatal("fallback variant must be flagged untranslated")
	}
	en := variantFor(vs, "en")
	if en == nil || !en.Translated {
		t.Fatalf("en should still translate: %+v", en)
	}
}

func TestDetectSource_FailsOpenToEnglish(t *testing.T) {
	tr := &fakeTranslator{langErr: errors.New("remote 500")}
	l := NewLocalizer(tr, nil, nil, 60)
	if got := l.DetectSource(context.Background(), "några ord"); got != "en" {
		t.Fatalf("expected en, got %q", got)
	}

	tr = &fakeTranslator{lang: "Swedish"} // not a two-letter code
	l = NewLocalizer(tr, nil, nil, 60)
	if got := l.DetectSource(context.Background(), "några ord"); got != "en" {
		t.Fatalf("expected en for unrecognized code, got %q", got)
	}
}

func TestVariants_CacheSkipsExternalCalls(t *testing.T) {
	tr := &fakeTranslator{lang: "es"}
	cache := &memCache{}
	l := NewLocalizer(tr, cache, []string{"en"}, 60)

	l.Variants(context.Background(), "r4", "Casa", "Una casa bonita")
	detects, translates := tr.counts()

	// unchanged text on re-import: everything served from cache
	l.Variants(context.Background(), "r4", "Casa", "Una casa bonita")
	if d, n := tr.counts(); d != detects || n != translates {
		t.Fatalf("expected zero extra external calls, got %d/%d more",
			d-detects, n-translates)
	}
}

func TestTranslate_EmptyTextIsNoop(t *testing.T) {
	tr := &fakeTranslator{lang: "es"}
	l := NewLocalizer(tr, nil, []string{"en"}, 60)

	got, ok := l.translate(context.Background(), "", "en", "es")
	if got != "" || !ok {
		t.Fatalf("empty text should be a no-op, got %q %v", got, ok)
	}
	if _, n := tr.counts(); n != 0 {
		t.Fatalf("no external call expected, got %d", n)
	}
}
