package nessus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/user/nessus-rider/pkg/transport"
)

// Client talks to the Nessus REST API with an access/secret key pair.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	accessKey  string
	secretKey  string
}

func NewClient(baseURL, accessKey, secretKey string, verifySSL bool) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: transport.NewHTTPClient(verifySSL),
		accessKey:  accessKey,
		secretKey:  secretKey,
	}
}

// ListScans returns every scan visible to the key pair.
func (c *Client) ListScans(ctx context.Context) ([]Scan, error) {
	var list scanList
	if err := c.get(ctx, "/scans", &list); err != nil {
		return nil, err
	}
	return list.Scans, nil
}

// FetchScan returns the plugin summary of one scan.
func (c *Client) FetchScan(ctx context.Context, scanID string) (*ScanDetail, error) {
	var detail ScanDetail
	if err := c.get(ctx, "/scans/"+scanID, &detail); err != nil {
		return nil, fmt.Errorf("fetch scan %s: %w", scanID, err)
	}
	return &detail, nil
}

// FetchPluginDetail returns the description and outputs of one plugin in a scan.
func (c *Client) FetchPluginDetail(ctx context.Context, scanID string, pluginID int) (*PluginDetail, error) {
	var detail PluginDetail
	path := fmt.Sprintf("/scans/%s/plugins/%d", scanID, pluginID)
	if err := c.get(ctx, path, &detail); err != nil {
		return nil, fmt.Errorf("fetch plugin %d of scan %s: %w", pluginID, scanID, err)
	}
	if err := detail.Validate(); err != nil {
		return nil, fmt.Errorf("plugin %d of scan %s: %w", pluginID, scanID, err)
	}
	return &detail, nil
}

// ServerStatus reports the scanner state, "ready" when it accepts requests.
func (c *Client) ServerStatus(ctx context.Context) (string, error) {
	var status struct {
		Status string `json:"status"`
	}
	if err := c.get(ctx, "/server/status", &status); err != nil {
		return "", err
	}
	return status.Status, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-ApiKeys", fmt.Sprintf("accessKey=%s; secretKey=%s;", c.accessKey, c.secretKey))
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
