package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrMissingCredential is returned when a required environment variable is unset.
var ErrMissingCredential = errors.New("missing credential")

// Credentials are the endpoints and secrets read from the environment.
type Credentials struct {
	NessusURL         string
	NessusAccessKey   string
	NessusSecretKey   string
	GhostwriterURL    string
	GhostwriterAPIKey string
	GeminiAPIKey      string
}

var credentialEnv = []struct {
	key string
	env string
}{
	{"nessus.url", "NESSUS_URL"},
	{"nessus.api_key", "NESSUS_API_KEY"},
	{"nessus.secret_key", "NESSUS_API_SECRET_KEY"},
	{"ghostwriter.url", "GHOSTWRITER_URL"},
	{"ghostwriter.api_key", "GHOSTWRITER_API_KEY"},
	{"gemini.api_key", "GEMINI_API_KEY"},
}

// LoadCredentials loads envFiles (default ".env") if present, then reads the
// environment. Variables already set in the environment win over the file.
func LoadCredentials(envFiles ...string) *Credentials {
	if err := godotenv.Load(envFiles...); err != nil {
		slog.Debug("No .env file loaded", "err", err)
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, c := range credentialEnv {
		_ = v.BindEnv(c.key, c.env)
	}

	return &Credentials{
		NessusURL:         strings.TrimRight(v.GetString("nessus.url"), "/"),
		NessusAccessKey:   v.GetString("nessus.api_key"),
		NessusSecretKey:   v.GetString("nessus.secret_key"),
		GhostwriterURL:    strings.TrimRight(v.GetString("ghostwriter.url"), "/"),
		GhostwriterAPIKey: v.GetString("ghostwriter.api_key"),
		GeminiAPIKey:      v.GetString("gemini.api_key"),
	}
}

// Service names one external system the credentials unlock.
type Service int

const (
	Nessus Service = iota
	Ghostwriter
	Gemini
)

func (c *Credentials) byService(s Service) []string {
	switch s {
	case Nessus:
		return []string{c.NessusURL, c.NessusAccessKey, c.NessusSecretKey}
	case Ghostwriter:
		return []string{c.GhostwriterURL, c.GhostwriterAPIKey}
	case Gemini:
		return []string{c.GeminiAPIKey}
	}
	return nil
}

var serviceEnv = map[Service][]string{
	Nessus:      {"NESSUS_URL", "NESSUS_API_KEY", "NESSUS_API_SECRET_KEY"},
	Ghostwriter: {"GHOSTWRITER_URL", "GHOSTWRITER_API_KEY"},
	Gemini:      {"GEMINI_API_KEY"},
}

// AllServices is what a full run talks to.
var AllServices = []Service{Nessus, Ghostwriter, Gemini}

// Validate reports every missing variable of the given services at once.
func (c *Credentials) Validate(services ...Service) error {
	var missing []string
	for _, s := range services {
		for i, val := range c.byService(s) {
			if val == "" {
				missing = append(missing, serviceEnv[s][i])
			}
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingCredential, strings.Join(missing, ", "))
	}
	return nil
}
