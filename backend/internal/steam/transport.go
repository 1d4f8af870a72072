package steam

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bbrillhart19/vapor/backend/pkg/errors"
)

// Record is a loosely-typed remote payload row.
type Record = map[string]any

// Transport is the narrow surface of the Steam Web API this package
// consumes. The production implementation talks HTTP; tests substitute
// fakes without touching the client logic built on top.
type Transport interface {
	// GetUserDetails returns {"player": {...}} for one user.
	GetUserDetails(ctx context.Context, steamID string) (Record, error)
	// GetFriendsList returns {"friends": [...]} with persona names merged in.
	GetFriendsList(ctx context.Context, steamID string) (Record, error)
	// GetOwnedGames returns {"games": [...]} with app info included.
	GetOwnedGames(ctx context.Context, steamID string) (Record, error)
	// GetRecentlyPlayedGames returns {"games": [...]} for the trailing window.
	GetRecentlyPlayedGames(ctx context.Context, steamID string) (Record, error)
	// GetAppDetails returns the store catalog data block for one app.
	GetAppDetails(ctx context.Context, appID int64) (Record, error)
}

const (
	webAPIBase   = "https://api.steampowered.com"
	storeAPIBase = "https://store.steampowered.com/api"
)

// httpTransport implements Transport against the public Steam Web API.
type httpTransport struct {
	apiKey string
	client *http.Client
}

// NewHTTPTransport returns a Transport over the public Steam Web API.
func NewHTTPTransport(apiKey string) Transport {
	return &httpTransport{
		apiKey: apiKey,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (t *httpTransport) get(ctx context.Context, rawURL string) (Record, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.NewSteamAPI(resp.StatusCode, nil)
	}

	var payload Record
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode steam response: %w", err)
	}
	return payload, nil
}

func (t *httpTransport) webAPIURL(path string, params url.Values) string {
	params.Set("key", t.apiKey)
	return webAPIBase + path + "?" + params.Encode()
}

func (t *httpTransport) playerSummaries(ctx context.Context, steamIDs []string) ([]Record, error) {
	params := url.Values{}
	params.Set("steamids", strings.Join(steamIDs, ","))
	payload, err := t.get(ctx, t.webAPIURL("/ISteamUser/GetPlayerSummaries/v2/", params))
	if err != nil {
		return nil, err
	}
	response, _ := payload["response"].(map[string]any)
	return asRecords(response["players"]), nil
}

func (t *httpTransport) GetUserDetails(ctx context.Context, steamID string) (Record, error) {
	players, err := t.playerSummaries(ctx, []string{steamID})
	if err != nil {
		return nil, err
	}
	if len(players) == 0 {
		return Record{}, nil
	}
	return Record{"player": players[0]}, nil
}

func (t *httpTransport) GetFriendsList(ctx context.Context, steamID string) (Record, error) {
	params := url.Values{}
	params.Set("steamid", steamID)
	params.Set("relationship", "friend")
	payload, err := t.get(ctx, t.webAPIURL("/ISteamUser/GetFriendList/v1/", params))
	if err != nil {
		return nil, err
	}

	friendsList, _ := payload["friendslist"].(map[string]any)
	friends := asRecords(friendsList["friends"])
	if len(friends) == 0 {
		return Record{}, nil
	}

	// The friend list only carries steamids; merge persona names from
	// player summaries, batched at the API's 100-id ceiling.
	personaNames := make(map[string]string, len(friends))
	for start := 0; start < len(friends); start += 100 {
		end := min(start+100, len(friends))
		ids := make([]string, 0, end-start)
		for _, friend := range friends[start:end] {
			if id, ok := friend["steamid"].(string); ok {
				ids = append(ids, id)
			}
		}
		players, err := t.playerSummaries(ctx, ids)
		if err != nil {
			return nil, err
		}
		for _, player := range players {
			if id, ok := player["steamid"].(string); ok {
				personaNames[id], _ = player["personaname"].(string)
			}
		}
	}
	for _, friend := range friends {
		if id, ok := friend["steamid"].(string); ok {
			if name, ok := personaNames[id]; ok && name != "" {
				friend["personaname"] = name
			}
		}
	}

	enriched := make([]any, len(friends))
	for i, friend := range friends {
		enriched[i] = friend
	}
	return Record{"friends": enriched}, nil
}

func (t *httpTransport) GetOwnedGames(ctx context.Context, steamID string) (Record, error) {
	params := url.Values{}
	params.Set("steamid", steamID)
	params.Set("include_appinfo", "1")
	params.Set("include_played_free_games", "1")
	payload, err := t.get(ctx, t.webAPIURL("/IPlayerService/GetOwnedGames/v1/", params))
	if err != nil {
		return nil, err
	}
	response, _ := payload["response"].(map[string]any)
	return Record(response), nil
}

func (t *httpTransport) GetRecentlyPlayedGames(ctx context.Context, steamID string) (Record, error) {
	params := url.Values{}
	params.Set("steamid", steamID)
	payload, err := t.get(ctx, t.webAPIURL("/IPlayerService/GetRecentlyPlayedGames/v1/", params))
	if err != nil {
		return nil, err
	}
	response, _ := payload["response"].(map[string]any)
	return Record(response), nil
}

func (t *httpTransport) GetAppDetails(ctx context.Context, appID int64) (Record, error) {
	rawURL := fmt.Sprintf("%s/appdetails?appids=%d", storeAPIBase, appID)
	payload, err := t.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}

	entry, _ := payload[fmt.Sprintf("%d", appID)].(map[string]any)
	if success, _ := entry["success"].(bool); !success {
		return Record{}, nil
	}
	data, _ := entry["data"].(map[string]any)
	return Record(data), nil
}

func asRecords(val any) []Record {
	items, ok := val.([]any)
	if !ok {
		return nil
	}
	records := make([]Record, 0, len(items))
	for _, item := range items {
		if record, ok := item.(map[string]any); ok {
			records = append(records, record)
		}
	}
	return records
}
