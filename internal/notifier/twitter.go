package notifier

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/dghubble/go-twitter/twitter" //nolint:staticcheck // Using stable v1.1 API
	"github.com/dghubble/oauth1"
)

const (
	tweetLimit    = 280
	tweetHashtags = "\n\n#PSO2 #UrgentQuest"
)

// TwitterCredentials holds the OAuth1 keys for posting as a user
type TwitterCredentials struct {
	APIKey       string
	APISecret    string
	AccessToken  string
	AccessSecret string
}

// Complete reports whether every credential is set
func (c TwitterCredentials) Complete() bool {
	return c.APIKey != "" && c.APISecret != "" && c.AccessToken != "" && c.AccessSecret != ""
}

// TwitterNotifier posts reminders as tweets
type TwitterNotifier struct {
	client *twitter.Client
}

// NewTwitterNotifier creates a new Twitter notifier
func NewTwitterNotifier(creds TwitterCredentials) (*TwitterNotifier, error) {
	if !creds.Complete() {
		return nil, fmt.Errorf("missing required Twitter credentials")
	}

	config := oauth1.NewConfig(creds.APIKey, creds.APISecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessSecret)
	httpClient := config.Client(oauth1.NoContext, token)

	return &TwitterNotifier{client: twitter.NewClient(httpClient)}, nil
}

// Notify posts text as a single tweet
func (n *TwitterNotifier) Notify(ctx context.Context, text string) error {
	if _, _, err := n.client.Statuses.Update(formatTweet(text), nil); err != nil {
		return fmt.Errorf("failed to post tweet: %w", err)
	}
	return nil
}

// formatTweet adds hashtags when they fit and truncates to the tweet length limit
func formatTweet(text string) string {
	tweet := text + tweetHashtags
	if utf8.RuneCountInString(tweet) <= tweetLimit {
		return tweet
	}

	runes := []rune(text)
	if len(runes) <= tweetLimit {
		return text
	}
	return string(runes[:tweetLimit-3]) + "..."
}
