package app

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"regexp"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/ViaEstate/feed-ingest/internal/domain"
)

var localeCodeRe = regexp.MustCompile(`^[a-z]{2}$`)

// Localizer produces the per-locale title/description variants for a
// record. Detection and translation failures never fail the record: they
// degrade to the source text with the variant flagged untranslated.
type Localizer struct {
	tr      domain.Translator
	cache   domain.Cache // nil disables memoization
	locales []string
	ttlSec  int
}

func NewLocalizer(tr domain.Translator, cache domain.Cache, locales []string, ttlSec int) *Localizer {
	if len(locales) == 0 {
		locales = []string{"en", "sv", "nb", "da", "fi"}
	}
	return &Localizer{tr: tr, cache: cache, locales: locales, ttlSec: ttlSec}
}

// DetectSource classifies the description's language. Fails open to "en".
func (l *Localizer) DetectSource(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return "en"
	}
	key := "lang:" + textHash(text)
	if l.cache != nil {
		var cached string
		if ok, _ := l.cache.Get(ctx, key, &cached); ok && cached != "" {
			return cached
		}
	}
	code, err := l.tr.DetectLanguage(ctx, text)
	if err != nil {
		log.Warn().Err(err).Msg("language detection failed, defaulting to en")
		return "en"
	}
	code = strings.ToLower(strings.TrimSpace(code))
	if !localeCodeRe.MatchString(code) {
		log.Warn().Str("code", code).Msg("unrecognized locale code, defaulting to en")
		return "en"
	}
	if l.cache != nil {
		_ = l.cache.Set(ctx, key, code, l.ttlSec)
	}
	return code
}

// Variants returns one LocaleVariant per configured target locale, plus
// the detected source locale when it is not already a target. The source
// variant is the original text verbatim with no external call; all other
// locales get title and description translated independently, in parallel.
func (l *Localizer) Variants(ctx context.Context, reference, title, description string) []domain.LocaleVariant {
	src := l.DetectSource(ctx, description)

	locales := l.locales
	if !containsLocale(locales, src) {
		locales = append(append([]string{}, locales...), src)
	}

	out := make([]domain.LocaleVariant, len(locales))
	var wg sync.WaitGroup
	for i, loc := range locales {
		if loc == src {
			out[i] = domain.LocaleVariant{
				Reference:   reference,
				Locale:      loc,
				Title:       title,
				Description: description,
				Translated:  true,
			}
			continue
		}
		wg.Add(1)
		go func(i int, loc string) {
			defer wg.Done()
			t, tok := l.translate(ctx, title, loc, src)
			d, dok := l.translate(ctx, description, loc, src)
			out[i] = domain.LocaleVariant{
				Reference:   reference,
				Locale:      loc,
				Title:       t,
				Description: d,
				Translated:  tok && dok,
			}
		}(i, loc)
	}
	wg.Wait()
	return out
}

// translate returns the localized text and whether the translation really
// happened. Empty input and same-locale requests are no-ops; failures fall
// back to the source text.
func (l *Localizer) translate(ctx context.Context, text, target, source string) (string, bool) {
	if strings.TrimSpace(text) == "" || target == source {
		return text, true
	}
	key := "tr:" + target + ":" + textHash(text)
	if l.cache != nil {
		var cached string
		if ok, _ := l.cache.Get(ctx, key, &cached); ok && cached != "" {
			return cached, true
		}
	}
	got, err := l.tr.Translate(ctx, text, target, source)
	if err != nil || strings.TrimSpace(got) == "" {
		log.Warn().Str("target", target).Err(err).Msg("translation failed, keeping source text")
		return text, false
	}
	if l.cache != nil {
		_ = l.cache.Set(ctx, key, got, l.ttlSec)
	}
	return got, true
}

func textHash(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func containsLocale(ls []string, l string) bool {
	for _, v := range ls {
		if v == l {
			return true
		}
	}
	return false
}
