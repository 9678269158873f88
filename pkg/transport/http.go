package transport

import (
	"crypto/tls"
	"net/http"
	"time"
)

// DefaultTimeout bounds every collaborator request.
const DefaultTimeout = 60 * time.Second

// NewHTTPClient returns a client for the Nessus and Ghostwriter APIs. Both are
// commonly deployed with self-signed certificates, so verification can be
// switched off from the command line.
func NewHTTPClient(verifySSL bool) *http.Client {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	if !verifySSL {
		tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	}
	return &http.Client{
		Timeout:   DefaultTimeout,
		Transport: tr,
	}
}
