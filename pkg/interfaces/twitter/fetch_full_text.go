package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/sirupsen/logrus"
)

// FetchFullText retrieves the expanded body of a single post. Long posts
// carry their complete text in the note_tweet object; when none is
// present the visible text is the whole body.
func (c *Client) FetchFullText(ctx context.Context, postID string) (string, error) {
	log := c.logger.WithFields(logrus.Fields{
		"method":  "FetchFullText",
		"account": c.creds.ID,
		"post_id": postID,
	})

	query := url.Values{}
	query.Set("tweet.fields", "text,note_tweet")

	endpoint := fmt.Sprintf("%s/%s", c.config.TweetsPath, postID)

	resp, err := c.makeRequest(ctx, endpoint, query, c.config.LookupTimeout)
	if err != nil {
		return "", fmt.Errorf("failed to fetch full text: %w", err)
	}
	defer resp.Body.Close()

	if err := c.handleResponse(resp); err != nil {
		return "", err
	}

	var tweetResp singleTweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&tweetResp); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if tweetResp.Data.NoteTweet.Text != "" {
		log.WithField("length", len(tweetResp.Data.NoteTweet.Text)).Debug("Found note tweet full text")
		return tweetResp.Data.NoteTweet.Text, nil
	}
	return tweetResp.Data.Text, nil
}
