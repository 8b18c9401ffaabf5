// Package nexon is a thin client for the MapleStory SEA Open API.
//
// Every call is a GET of one logical endpoint with flat string query
// parameters. Bodies are returned as opaque JSON documents; the client does
// not type them.
package nexon

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/krisalay/msea-cache/types"
)

const (
	// DefaultBaseURL is the MapleStory SEA Open API root.
	DefaultBaseURL = "https://open.api.nexon.com/maplestorysea/v1"

	// APIKeyHeader carries the static API key on every request.
	APIKeyHeader = "x-nxopen-api-key"

	maxBodyBytes = 8 << 20
)

// Endpoint paths.
const (
	PathCharacterBasic           = "character/basic"
	PathCharacterStat            = "character/stat"
	PathCharacterHyperStat       = "character/hyper-stat"
	PathCharacterAbility         = "character/ability"
	PathCharacterItemEquipment   = "character/item-equipment"
	PathCharacterSymbolEquipment = "character/symbol-equipment"
	PathCharacterSkill           = "character/skill"
	PathCharacterLinkSkill       = "character/link-skill"
	PathCharacterID              = "id"
	PathGuildID                  = "guild/id"
	PathGuildBasic               = "guild/basic"
)

// Query parameter names.
const (
	ParamOCID          = "ocid"
	ParamOGuildID      = "oguild_id"
	ParamCharacterName = "character_name"
	ParamGuildName     = "guild_name"
	ParamWorldName     = "world_name"
	ParamSkillGrade    = "character_skill_grade"
)

// StatusError reports a non-2xx response.
type StatusError struct {
	Path       string
	StatusCode int
	Status     string
	// Name and Message come from the API's error body when present.
	Name    string
	Message string
}

func (e *StatusError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s returned %s (%s: %s)", e.Path, e.Status, e.Name, e.Message)
	}
	return fmt.Sprintf("%s returned %s", e.Path, e.Status)
}

// Client calls the Open API.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClient creates a client. An empty baseURL uses DefaultBaseURL and a nil
// http client uses http.DefaultClient.
func NewClient(baseURL, apiKey string, client *http.Client) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  client,
	}
}

// Get fetches one endpoint and returns its body as a compact JSON document.
func (c *Client) Get(ctx context.Context, path string, params map[string]string) (types.Document, error) {
	q := url.Values{}
	for k, v := range params {
		q.Set(k, v)
	}
	endpoint := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set(APIKeyHeader, c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s request: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{
			Path:       path,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
		}
		if gjson.ValidBytes(body) {
			statusErr.Name = gjson.GetBytes(body, "error.name").String()
			statusErr.Message = gjson.GetBytes(body, "error.message").String()
		}
		return nil, statusErr
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, body); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	return types.Document(buf.Bytes()), nil
}

// CharacterID resolves a character name to its ocid.
func (c *Client) CharacterID(ctx context.Context, name string) (string, error) {
	doc, err := c.Get(ctx, PathCharacterID, map[string]string{ParamCharacterName: name})
	if err != nil {
		return "", err
	}
	ocid := doc.String("ocid")
	if ocid == "" {
		return "", fmt.Errorf("%s: response has no ocid", PathCharacterID)
	}
	return ocid, nil
}

// GuildID resolves a guild name within a world to its oguild_id.
func (c *Client) GuildID(ctx context.Context, name, world string) (string, error) {
	doc, err := c.Get(ctx, PathGuildID, map[string]string{
		ParamGuildName: name,
		ParamWorldName: world,
	})
	if err != nil {
		return "", err
	}
	id := doc.String("oguild_id")
	if id == "" {
		return "", fmt.Errorf("%s: response has no oguild_id", PathGuildID)
	}
	return id, nil
}
