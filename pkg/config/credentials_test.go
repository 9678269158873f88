package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearCredentialEnv(t *testing.T) {
	t.Helper()
	for _, c := range credentialEnv {
		t.Setenv(c.env, "")
		os.Unsetenv(c.env)
	}
}

func TestLoadCredentialsFromEnv(t *testing.T) {
	clearCredentialEnv(t)
	t.Setenv("NESSUS_URL", "https://nessus.local:8834/")
	t.Setenv("NESSUS_API_KEY", "ak")
	t.Setenv("NESSUS_API_SECRET_KEY", "sk")
	t.Setenv("GHOSTWRITER_URL", "https://gw.local")
	t.Setenv("GHOSTWRITER_API_KEY", "token")
	t.Setenv("GEMINI_API_KEY", "gem")

	c := LoadCredentials(filepath.Join(t.TempDir(), "missing.env"))
	assert.Equal(t, "https://nessus.local:8834", c.NessusURL)
	assert.Equal(t, "ak", c.NessusAccessKey)
	assert.Equal(t, "sk", c.NessusSecretKey)
	assert.Equal(t, "https://gw.local", c.GhostwriterURL)
	assert.Equal(t, "token", c.GhostwriterAPIKey)
	assert.Equal(t, "gem", c.GeminiAPIKey)
	assert.NoError(t, c.Validate(AllServices...))
}

func TestLoadCredentialsFromDotEnv(t *testing.T) {
	clearCredentialEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("NESSUS_URL=https://scanner\nNESSUS_API_KEY=from-file\n"), 0600))
	t.Setenv("NESSUS_API_KEY", "from-env")

	c := LoadCredentials(envFile)
	assert.Equal(t, "https://scanner", c.NessusURL)
	assert.Equal(t, "from-env", c.NessusAccessKey)
	os.Unsetenv("NESSUS_URL")
}

func TestValidateListsAllMissing(t *testing.T) {
	c := &Credentials{NessusURL: "https://n", GhostwriterURL: "https://g"}

	err := c.Validate(AllServices...)
	require.ErrorIs(t, err, ErrMissingCredential)
	for _, name := range []string{"NESSUS_API_KEY", "NESSUS_API_SECRET_KEY", "GHOSTWRITER_API_KEY", "GEMINI_API_KEY"} {
		assert.Contains(t, err.Error(), name)
	}
	assert.NotContains(t, err.Error(), "NESSUS_URL")
}

func TestValidateOnlyRequestedServices(t *testing.T) {
	c := &Credentials{NessusAccessKey: "ak", NessusSecretKey: "sk"}

	err := c.Validate(Nessus)
	require.ErrorIs(t, err, ErrMissingCredential)
	assert.Equal(t, "missing credential: NESSUS_URL", err.Error())

	c.NessusURL = "https://n"
	assert.NoError(t, c.Validate(Nessus))

	err = c.Validate(Ghostwriter, Gemini)
	require.ErrorIs(t, err, ErrMissingCredential)
	assert.NotContains(t, err.Error(), "NESSUS")
	assert.Contains(t, err.Error(), "GEMINI_API_KEY")
}
