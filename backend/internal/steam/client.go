package steam

import (
	"context"
	"iter"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/bbrillhart19/vapor/backend/pkg/config"
	"github.com/bbrillhart19/vapor/backend/pkg/errors"
	"github.com/bbrillhart19/vapor/backend/pkg/logger"
)

const (
	defaultRetries    = 5
	defaultRetryDelay = 200 * time.Millisecond
)

// Client adapts the Steam Web API into clean, field-selected records.
// Expected remote faults never surface as errors: rate limiting is
// retried with a bounded budget, anything else degrades to an empty
// result, so a multi-hour crawl is never crashed by one bad query.
type Client struct {
	transport  Transport
	steamID    string
	retries    int
	retryDelay time.Duration
	logger     *zap.Logger
}

// NewClient wraps a Transport for the given primary Steam ID.
func NewClient(transport Transport, steamID string) *Client {
	return &Client{
		transport:  transport,
		steamID:    steamID,
		retries:    defaultRetries,
		retryDelay: defaultRetryDelay,
		logger:     logger.Get(),
	}
}

// FromConfig builds a Client over the HTTP transport.
func FromConfig(cfg *config.Config) *Client {
	return NewClient(NewHTTPTransport(cfg.SteamAPIKey), cfg.SteamID)
}

// SteamID returns the primary Steam ID the client is anchored on.
func (c *Client) SteamID() string {
	return c.steamID
}

// queryWithRetry invokes a remote call, absorbing expected fault
// classes. Rate limiting (429) sleeps and retries up to the budget and
// then yields an empty record; unauthorized (401) is not transient and
// yields empty immediately; anything else is logged and yields empty.
func (c *Client) queryWithRetry(ctx context.Context, query func(context.Context) (Record, error)) Record {
	retries := c.retries
	for {
		response, err := query(ctx)
		if err == nil {
			if response == nil {
				return Record{}
			}
			return response
		}

		if apiErr, ok := err.(*errors.ErrSteamAPI); ok {
			switch apiErr.StatusCode {
			case 429:
				if retries > 0 {
					c.logger.Warn("Too many requests, retrying",
						zap.Int("remaining", retries),
					)
					retries--
					time.Sleep(c.retryDelay)
					continue
				}
				c.logger.Warn("Reached maximum retries, cannot complete query. Try again later!")
				return Record{}
			case 401:
				c.logger.Warn("Query unauthorized, skipping")
				return Record{}
			}
		}

		c.logger.Warn("Caught an unhandled query error", zap.Error(err))
		return Record{}
	}
}

// extractFields reduces a record to the requested fields, leaving nil
// for fields the payload lacks.
func extractFields(record Record, fields []string) Record {
	out := make(Record, len(fields))
	for _, field := range fields {
		out[field] = record[field]
	}
	return out
}

// UserDetails queries one user's profile reduced to fields.
func (c *Client) UserDetails(ctx context.Context, steamID string, fields []string) Record {
	response := c.queryWithRetry(ctx, func(ctx context.Context) (Record, error) {
		return c.transport.GetUserDetails(ctx, steamID)
	})
	player, ok := response["player"].(map[string]any)
	if !ok {
		c.logger.Warn("Could not get user details", zap.String("steamid", steamID))
		return Record{}
	}
	return extractFields(player, fields)
}

// PrimaryUserDetails queries the profile of the primary user.
func (c *Client) PrimaryUserDetails(ctx context.Context, fields []string) Record {
	return c.UserDetails(ctx, c.steamID, fields)
}

// UserFriends lazily yields the user's friend records reduced to
// fields. The sequence is one-shot and finite; limit > 0 truncates it
// after retrieval rather than paginating the remote API.
func (c *Client) UserFriends(ctx context.Context, steamID string, fields []string, limit int) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		response := c.queryWithRetry(ctx, func(ctx context.Context) (Record, error) {
			return c.transport.GetFriendsList(ctx, steamID)
		})
		friends := asRecords(response["friends"])
		if friends == nil {
			c.logger.Warn("Could not find friends", zap.String("steamid", steamID))
			return
		}
		for i, friend := range friends {
			if limit > 0 && i >= limit {
				return
			}
			if !yield(extractFields(friend, fields)) {
				return
			}
		}
	}
}

// intFields are payload fields that must merge into the graph as
// integers. JSON decoding yields float64 for every number.
var intFields = []string{"appid", "playtime_forever", "playtime_2weeks"}

func normalizeInts(record Record) Record {
	for _, field := range intFields {
		if v, ok := record[field].(float64); ok {
			record[field] = int64(v)
		}
	}
	return record
}

// parseGamesResponse yields game records from a games payload, skipping
// records without an app identifier and truncating at limit.
func (c *Client) parseGamesResponse(response Record, fields []string, limit int) iter.Seq[Record] {
	return func(yield func(Record) bool) {
		games := asRecords(response["games"])
		count := 0
		for _, game := range games {
			if limit > 0 && count >= limit {
				return
			}
			if game["appid"] == nil {
				continue
			}
			count++
			if !yield(normalizeInts(extractFields(game, fields))) {
				return
			}
		}
	}
}

// UserOwnedGames lazily yields the user's owned games reduced to fields.
func (c *Client) UserOwnedGames(ctx context.Context, steamID string, fields []string, limit int) iter.Seq[Record] {
	response := c.queryWithRetry(ctx, func(ctx context.Context) (Record, error) {
		return c.transport.GetOwnedGames(ctx, steamID)
	})
	if response["games"] == nil {
		c.logger.Warn("Could not find owned games", zap.String("steamid", steamID))
	}
	return c.parseGamesResponse(response, fields, limit)
}

// UserRecentlyPlayedGames lazily yields the user's recently played games.
func (c *Client) UserRecentlyPlayedGames(ctx context.Context, steamID string, fields []string, limit int) iter.Seq[Record] {
	response := c.queryWithRetry(ctx, func(ctx context.Context) (Record, error) {
		return c.transport.GetRecentlyPlayedGames(ctx, steamID)
	})
	return c.parseGamesResponse(response, fields, limit)
}

// GameGenres returns the genre records for a game, ids normalized to
// integers. Empty if the catalog has no genre data for the app.
func (c *Client) GameGenres(ctx context.Context, appID int64) []Record {
	details := c.queryWithRetry(ctx, func(ctx context.Context) (Record, error) {
		return c.transport.GetAppDetails(ctx, appID)
	})

	genres := asRecords(details["genres"])
	records := make([]Record, 0, len(genres))
	for _, genre := range genres {
		record := extractFields(genre, []string{"id", "description"})
		// The store API serves genre ids as strings
		if idStr, ok := record["id"].(string); ok {
			if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
				record["id"] = id
			}
		}
		records = append(records, record)
	}
	return records
}

// AboutTheGame returns the game's long-form description as plain text,
// with links, emphasis and images stripped. Empty if unavailable.
func (c *Client) AboutTheGame(ctx context.Context, appID int64) string {
	details := c.queryWithRetry(ctx, func(ctx context.Context) (Record, error) {
		return c.transport.GetAppDetails(ctx, appID)
	})
	html, ok := details["about_the_game"].(string)
	if !ok || html == "" {
		return ""
	}
	text, err := htmlToText(html)
	if err != nil {
		c.logger.Warn("Could not convert game description to text",
			zap.Int64("appid", appID),
			zap.Error(err),
		)
		return ""
	}
	return text
}
