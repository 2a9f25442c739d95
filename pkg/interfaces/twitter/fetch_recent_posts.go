package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tanadol/relay-go/pkg/posts"
)

// FetchRecentPosts retrieves one page of the user's recent posts created
// after sinceID and within the lookback window, mapped onto the explicit
// post model and sorted in processing order.
// Rate limit: 1500/15m (app), 900/15m (user).
func (c *Client) FetchRecentPosts(ctx context.Context, userID, sinceID string, start time.Time, max int) ([]posts.CandidatePost, error) {
	log := c.logger.WithFields(logrus.Fields{
		"method":   "FetchRecentPosts",
		"account":  c.creds.ID,
		"user_id":  userID,
		"since_id": sinceID,
	})

	if max <= 0 || max > c.config.MaxPageSize {
		max = c.config.MaxPageSize
	}
	// API floor for max_results is 5.
	if max < 5 {
		max = 5
	}

	query := url.Values{}
	query.Set("max_results", strconv.Itoa(max))
	query.Set("tweet.fields", strings.Join(c.config.TweetFields, ","))
	query.Set("expansions", strings.Join(c.config.ExpansionFields, ","))
	query.Set("media.fields", strings.Join(c.config.MediaFields, ","))
	if !start.IsZero() {
		query.Set("start_time", start.UTC().Truncate(time.Second).Format(time.RFC3339))
	}
	if sinceID != "" {
		query.Set("since_id", sinceID)
	}

	endpoint := fmt.Sprintf("%s/%s/tweets", c.config.UsersPath, userID)
	log.WithField("endpoint", endpoint).Debug("Fetching recent posts")

	resp, err := c.makeRequest(ctx, endpoint, query, c.config.FetchTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch recent posts: %w", err)
	}
	defer resp.Body.Close()

	if err := c.handleResponse(resp); err != nil {
		return nil, err
	}

	var tweetResp TweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&tweetResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	candidates := toCandidates(&tweetResp)
	log.WithField("count", len(candidates)).Debug("Fetched recent posts")
	return candidates, nil
}
