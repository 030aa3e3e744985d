package notifier

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
)

// DiscordDirectory lists the guilds a Discord bot has joined
type DiscordDirectory struct {
	session *discordgo.Session
}

// NewDiscordDirectory creates a REST-only Discord session for the bot token.
// No gateway connection is opened.
func NewDiscordDirectory(token string) (*DiscordDirectory, error) {
	if token == "" {
		return nil, errors.New("discord token is required")
	}
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	return &DiscordDirectory{session: session}, nil
}

// Destinations returns up to limit guilds, first page only
func (d *DiscordDirectory) Destinations(ctx context.Context, limit int) ([]Destination, error) {
	guilds, err := d.session.UserGuilds(limit, "", "", false, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching guilds: %w", err)
	}

	out := make([]Destination, 0, len(guilds))
	for _, g := range guilds {
		out = append(out, &discordGuild{session: d.session, id: g.ID})
	}
	return out, nil
}

type discordGuild struct {
	session *discordgo.Session
	id      string
}

func (g *discordGuild) ID() string { return g.id }

func (g *discordGuild) Subchannels(ctx context.Context) ([]Subchannel, error) {
	channels, err := g.session.GuildChannels(g.id, discordgo.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("fetching channels for guild %s: %w", g.id, err)
	}

	out := make([]Subchannel, 0, len(channels))
	for _, c := range channels {
		out = append(out, &discordChannel{session: g.session, id: c.ID, name: c.Name})
	}
	return out, nil
}

type discordChannel struct {
	session  *discordgo.Session
	id, name string
}

func (c *discordChannel) Name() string { return c.name }

func (c *discordChannel) Send(ctx context.Context, text string) error {
	if _, err := c.session.ChannelMessageSend(c.id, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("sending to channel %s: %w", c.id, err)
	}
	return nil
}
