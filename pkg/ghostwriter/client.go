package ghostwriter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/user/nessus-rider/pkg/transport"
)

// DefaultDelay separates two insert mutations. Ghostwriter does not keep the
// caller's order for back-to-back inserts, so findings are paced one by one.
const DefaultDelay = time.Second

const insertFindingsMutation = `mutation InsertFindings($findings: [reportedFinding_insert_input!]!) {
  insert_reportedFinding(objects: $findings) {
    returning {
      id
      title
      cvssScore
      position
    }
  }
}`

const whoamiQuery = `query Whoami {
  whoami {
    username
    role
    expires
  }
}`

// Client sends GraphQL requests to a Ghostwriter instance.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	// Delay is waited before every insert mutation.
	Delay  time.Duration
	Sleep  transport.SleepFunc
	apiKey string
}

func NewClient(baseURL, apiKey string, verifySSL bool) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: transport.NewHTTPClient(verifySSL),
		Delay:      DefaultDelay,
		Sleep:      transport.Sleep,
		apiKey:     apiKey,
	}
}

// InsertFindings submits findings strictly one at a time, in slice order.
// A failed insert is logged and counted; it neither stops the batch nor
// rolls back earlier inserts.
func (c *Client) InsertFindings(ctx context.Context, findings []Finding) Summary {
	var sum Summary
	for _, f := range findings {
		if err := c.Sleep(ctx, c.Delay); err != nil {
			slog.Error("Submission interrupted", "title", f.Title, "error", err)
			sum.Failed += len(findings) - sum.Inserted - sum.Failed
			return sum
		}

		var data struct {
			Insert struct {
				Returning []struct {
					ID       int    `json:"id"`
					Title    string `json:"title"`
					Position int    `json:"position"`
				} `json:"returning"`
			} `json:"insert_reportedFinding"`
		}
		err := c.do(ctx, insertFindingsMutation, map[string]any{"findings": f}, &data)
		if err != nil {
			slog.Error("Failed to insert finding into Ghostwriter", "title", f.Title, "position", f.Position, "error", err)
			sum.Failed++
			continue
		}
		sum.Inserted++
		slog.Info("Finding inserted into Ghostwriter", "title", f.Title, "position", f.Position)
		if len(data.Insert.Returning) > 0 {
			slog.Debug("Ghostwriter response", "id", data.Insert.Returning[0].ID)
		}
	}
	return sum
}

// Whoami checks the token and returns the account it belongs to.
func (c *Client) Whoami(ctx context.Context) (*Identity, error) {
	var data struct {
		Whoami Identity `json:"whoami"`
	}
	if err := c.do(ctx, whoamiQuery, nil, &data); err != nil {
		return nil, err
	}
	return &data.Whoami, nil
}

// do posts one GraphQL document. Success means HTTP 200 and no "errors"
// member in the body.
func (c *Client) do(ctx context.Context, query string, vars map[string]any, out any) error {
	body, err := json.Marshal(graphQLRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/v1/graphql", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Ghostwriter returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if errs, ok := envelope["errors"]; ok {
		var list []graphQLError
		if err := json.Unmarshal(errs, &list); err != nil || len(list) == 0 {
			return fmt.Errorf("GraphQL errors: %s", strings.TrimSpace(string(errs)))
		}
		msgs := make([]string, 0, len(list))
		for _, e := range list {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("GraphQL errors: %s", strings.Join(msgs, "; "))
	}
	if out != nil {
		if data, ok := envelope["data"]; ok {
			if err := json.Unmarshal(data, out); err != nil {
				return fmt.Errorf("failed to decode data: %w", err)
			}
		}
	}
	return nil
}
