package translate

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/nessus-rider/pkg/telemetry"
)

type fakeGenerator struct {
	prompts []string
	fail    bool
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	if f.fail {
		return "", errors.New("429 quota exceeded")
	}
	return "T(" + prompt[strings.Index(prompt, " : ")+3:] + ")", nil
}

func newTestTranslator(t *testing.T, gen Generator) (*Translator, *[]time.Duration) {
	t.Helper()
	cache, err := LoadCache(filepath.Join(t.TempDir(), "translation.json"))
	require.NoError(t, err)

	var sleeps []time.Duration
	q := NewQuota(DefaultQuotaThreshold, DefaultQuotaCost, DefaultCooldown)
	q.Sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}
	return NewTranslator(gen, cache, q), &sleeps
}

func source(id string) Source {
	return Source{PluginID: id, Name: "plugin " + id, Description: "desc " + id, Mitigation: "fix " + id}
}

func TestTranslateMissThenHit(t *testing.T) {
	gen := &fakeGenerator{}
	tr, _ := newTestTranslator(t, gen)

	res := tr.Translate(context.Background(), source("100"), "italian")
	assert.Equal(t, StatusTranslated, res.Status)
	assert.Equal(t, "T(desc 100)", res.Description)
	assert.Equal(t, "T(fix 100)", res.Mitigation)
	require.Len(t, gen.prompts, 2)
	assert.Equal(t, "Translate the following text into italian : desc 100", gen.prompts[0])
	assert.Equal(t, DefaultQuotaCost, tr.Quota().Used())

	again := tr.Translate(context.Background(), source("100"), "italian")
	assert.Equal(t, StatusCached, again.Status)
	assert.Equal(t, res.Description, again.Description)
	assert.Equal(t, res.Mitigation, again.Mitigation)
	assert.Len(t, gen.prompts, 2, "cache hit must not call the generator")
	assert.Equal(t, DefaultQuotaCost, tr.Quota().Used(), "cache hit costs nothing")
}

func TestTranslateFailureFallsBack(t *testing.T) {
	gen := &fakeGenerator{fail: true}
	tr, _ := newTestTranslator(t, gen)

	res := tr.Translate(context.Background(), source("7"), "spanish")
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, "desc 7", res.Description)
	assert.Equal(t, "fix 7", res.Mitigation)
	assert.Equal(t, 0, tr.Quota().Used())

	_, ok := tr.cache.Lookup(Key{PluginID: "7", Language: "spanish"})
	assert.False(t, ok, "failures must not be cached")

	gen.fail = false
	retry := tr.Translate(context.Background(), source("7"), "spanish")
	assert.Equal(t, StatusTranslated, retry.Status)
}

func TestTranslateMitigationFailure(t *testing.T) {
	calls := 0
	gen := GeneratorFunc(func(ctx context.Context, prompt string) (string, error) {
		calls++
		if calls == 2 {
			return "", errors.New("blocked")
		}
		return "ok", nil
	})
	tr, _ := newTestTranslator(t, gen)

	res := tr.Translate(context.Background(), source("9"), "german")
	assert.Equal(t, StatusFailed, res.Status)
	assert.Equal(t, "desc 9", res.Description)
	assert.Equal(t, 0, tr.Quota().Used())
}

func TestQuotaBackoffAfterEightMisses(t *testing.T) {
	gen := &fakeGenerator{}
	tr, sleeps := newTestTranslator(t, gen)

	for i := 0; i < 8; i++ {
		res := tr.Translate(context.Background(), source(fmt.Sprint(i)), "italian")
		require.Equal(t, StatusTranslated, res.Status)
	}
	assert.Empty(t, *sleeps, "16 units consumed, no pause yet")
	assert.Equal(t, 16, tr.Quota().Used())

	tr.Translate(context.Background(), source("ninth"), "italian")
	assert.Equal(t, []time.Duration{DefaultCooldown}, *sleeps)
	assert.Equal(t, 1, tr.Quota().Cooldowns())
	assert.Equal(t, DefaultQuotaCost, tr.Quota().Used(), "reset then charged for the ninth miss")
}

func TestQuotaNotCheckedOnCacheHit(t *testing.T) {
	gen := &fakeGenerator{}
	tr, sleeps := newTestTranslator(t, gen)

	require.NoError(t, tr.cache.Store(Key{PluginID: "hit", Language: "italian"}, "x", "y"))
	tr.quota.used = 100

	res := tr.Translate(context.Background(), source("hit"), "italian")
	assert.Equal(t, StatusCached, res.Status)
	assert.Empty(t, *sleeps)
}

func TestInterruptedCooldownFails(t *testing.T) {
	gen := &fakeGenerator{}
	tr, _ := newTestTranslator(t, gen)
	tr.quota.used = 20
	tr.quota.Sleep = func(ctx context.Context, d time.Duration) error { return context.Canceled }

	res := tr.Translate(context.Background(), source("1"), "italian")
	assert.Equal(t, StatusFailed, res.Status)
	assert.Empty(t, gen.prompts)
	assert.Equal(t, 20, tr.Quota().Used())
}

func TestTranslatorMetrics(t *testing.T) {
	m := telemetry.NewMetrics()
	gen := &fakeGenerator{}
	tr, _ := newTestTranslator(t, gen)
	tr.WithMetrics(m)

	tr.Translate(context.Background(), source("1"), "italian")
	tr.Translate(context.Background(), source("1"), "italian")
	gen.fail = true
	tr.Translate(context.Background(), source("2"), "italian")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.Translations.WithLabelValues("translated")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Translations.WithLabelValues("cached")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Translations.WithLabelValues("failed")))
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "cached", StatusCached.String())
	assert.Equal(t, "translated", StatusTranslated.String())
	assert.Equal(t, "failed", StatusFailed.String())
	assert.Equal(t, "Status(9)", Status(9).String())
}
