package translate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/user/nessus-rider/pkg/telemetry"
)

// Status tells how a Result was produced.
type Status int

const (
	StatusCached Status = iota
	StatusTranslated
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusCached:
		return "cached"
	case StatusTranslated:
		return "translated"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Source is the untranslated plugin text.
type Source struct {
	PluginID    string
	Name        string
	Description string
	Mitigation  string
}

// Result carries translated text, or the source text when Status is StatusFailed.
type Result struct {
	Description string
	Mitigation  string
	Status      Status
}

// Translator serves translations from the cache and falls back to the
// generator under the quota.
type Translator struct {
	gen     Generator
	cache   *Cache
	quota   *Quota
	metrics *telemetry.Metrics
}

func NewTranslator(gen Generator, cache *Cache, quota *Quota) *Translator {
	return &Translator{gen: gen, cache: cache, quota: quota}
}

// WithMetrics records every result and cooldown in m.
func (t *Translator) WithMetrics(m *telemetry.Metrics) *Translator {
	t.metrics = m
	return t
}

func (t *Translator) Quota() *Quota { return t.quota }

// Translate never returns an error: failures come back as StatusFailed with
// the original text so the finding can still be submitted.
func (t *Translator) Translate(ctx context.Context, src Source, language string) Result {
	res := t.translate(ctx, src, language)
	t.metrics.Translation(res.Status.String())
	return res
}

func (t *Translator) translate(ctx context.Context, src Source, language string) Result {
	key := Key{PluginID: src.PluginID, Language: language}
	if e, ok := t.cache.Lookup(key); ok {
		slog.Info("Plugin already translated", "plugin_id", src.PluginID, "name", src.Name, "language", language)
		return Result{Description: e.Description, Mitigation: e.Mitigation, Status: StatusCached}
	}

	fallback := Result{Description: src.Description, Mitigation: src.Mitigation, Status: StatusFailed}

	paused, err := t.quota.Wait(ctx)
	if err != nil {
		telemetry.LogError("Quota cooldown interrupted, skipping translation", err, "plugin_id", src.PluginID)
		return fallback
	}
	if paused {
		t.metrics.Cooldown()
		slog.Info("Translation quota reached, paused", "cooldown", t.quota.Cooldown, "cooldowns", t.quota.Cooldowns())
	}

	slog.Info("Translating plugin", "plugin_id", src.PluginID, "name", src.Name, "language", language)

	description, err := t.generate(ctx, language, src.Description)
	if err != nil {
		telemetry.LogError("Translation of description failed, keeping original text", err, "plugin_id", src.PluginID)
		return fallback
	}
	mitigation, err := t.generate(ctx, language, src.Mitigation)
	if err != nil {
		telemetry.LogError("Translation of mitigation failed, keeping original text", err, "plugin_id", src.PluginID)
		return fallback
	}

	t.quota.Consume()

	if err := t.cache.Store(key, description, mitigation); err != nil {
		telemetry.LogError("Failed to persist translation", err, "plugin_id", src.PluginID, "path", t.cache.Path())
	} else {
		slog.Debug("Translation saved", "plugin_id", src.PluginID, "path", t.cache.Path())
	}
	// read back so the caller sees exactly what the next run will get
	if e, ok := t.cache.Lookup(key); ok {
		description, mitigation = e.Description, e.Mitigation
	}
	return Result{Description: description, Mitigation: mitigation, Status: StatusTranslated}
}

func (t *Translator) generate(ctx context.Context, language, text string) (string, error) {
	prompt, err := TranslationPrompt(language, text)
	if err != nil {
		return "", err
	}
	slog.Debug("Translate this text", "text", text)
	return t.gen.Generate(ctx, prompt)
}
