package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/beepbasket/backend/internal/domain"
)

// Client talks to a Home Assistant instance's REST API and exposes one todo
// list as a domain.ListService. All calls are blocking round trips with a
// bounded timeout.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	listEntity string
	logger     zerolog.Logger
}

// NewClient creates a list-service client bound to one todo entity.
func NewClient(baseURL, token, listEntity string, logger zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		listEntity: listEntity,
		logger:     logger.With().Str("component", "homeassistant").Logger(),
	}
}

// ListEntity returns the configured target list entity ID.
func (c *Client) ListEntity() string {
	return c.listEntity
}

// stateEntry is one element of the GET /api/states response.
type stateEntry struct {
	EntityID string `json:"entity_id"`
}

// ListTargets returns the entity IDs of every available todo list.
func (c *Client) ListTargets(ctx context.Context) ([]string, error) {
	var states []stateEntry
	if err := c.get(ctx, "/api/states", &states); err != nil {
		return nil, err
	}

	var targets []string
	for _, st := range states {
		if strings.HasPrefix(st.EntityID, "todo.") {
			targets = append(targets, st.EntityID)
		}
	}
	return targets, nil
}

// getItemsResponse is the service response of todo.get_items, keyed by
// entity ID.
type getItemsResponse struct {
	ServiceResponse map[string]struct {
		Items []domain.ListItem `json:"items"`
	} `json:"service_response"`
}

// ActiveItems fetches the target list's items still needing action.
func (c *Client) ActiveItems(ctx context.Context) ([]domain.ListItem, error) {
	body := map[string]interface{}{
		"entity_id": c.listEntity,
		"status":    domain.ItemNeedsAction,
	}

	var resp getItemsResponse
	if err := c.post(ctx, "/api/services/todo/get_items?return_response", body, &resp); err != nil {
		return nil, err
	}

	items := resp.ServiceResponse[c.listEntity].Items
	active := make([]domain.ListItem, 0, len(items))
	for _, item := range items {
		if item.Status == domain.ItemNeedsAction {
			active = append(active, item)
		}
	}
	return active, nil
}

// AddItem appends a new needs-action item to the target list.
func (c *Client) AddItem(ctx context.Context, summary string) error {
	body := map[string]interface{}{
		"entity_id": c.listEntity,
		"item":      summary,
	}
	return c.post(ctx, "/api/services/todo/add_item", body, nil)
}

// RenameItem renames an item in place, keeping its position and its
// needs-action status.
func (c *Client) RenameItem(ctx context.Context, oldSummary, newSummary string) error {
	body := map[string]interface{}{
		"entity_id": c.listEntity,
		"item":      oldSummary,
		"rename":    newSummary,
		"status":    domain.ItemNeedsAction,
	}
	return c.post(ctx, "/api/services/todo/update_item", body, nil)
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body interface{}, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrListUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: status %d", domain.ErrListUnavailable, resp.StatusCode)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("%w: decode failed: %v", domain.ErrListUnavailable, err)
		}
	}
	return nil
}
