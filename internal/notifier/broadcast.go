package notifier

import (
	"context"
	"fmt"

	"github.com/pfrederiksen/pso2-quests/internal/logger"
	"golang.org/x/time/rate"
)

const (
	// DefaultChannel is the subchannel name reminders are posted to
	DefaultChannel = "pso2_bot"
	// DestinationPageSize is the most destinations fetched per reminder.
	// Only the first page is used.
	DestinationPageSize = 100

	destinationWarnThreshold = 90
)

// Directory enumerates the destinations a bot belongs to
type Directory interface {
	Destinations(ctx context.Context, limit int) ([]Destination, error)
}

// Destination is a server/guild that contains named subchannels
type Destination interface {
	ID() string
	Subchannels(ctx context.Context) ([]Subchannel, error)
}

// Subchannel is a named channel within a destination that accepts text
type Subchannel interface {
	Name() string
	Send(ctx context.Context, text string) error
}

// Broadcaster sends each reminder to the matching subchannel of every destination
type Broadcaster struct {
	dir     Directory
	channel string
	limiter *rate.Limiter
}

// NewBroadcaster creates a Broadcaster posting to subchannels named channel.
// A nil limiter disables send pacing.
func NewBroadcaster(dir Directory, channel string, limiter *rate.Limiter) *Broadcaster {
	if channel == "" {
		channel = DefaultChannel
	}
	return &Broadcaster{
		dir:     dir,
		channel: channel,
		limiter: limiter,
	}
}

// Notify posts text to every destination that has the configured subchannel.
// Failures for individual destinations are logged and skipped; an error is only
// returned when destinations cannot be listed or every attempted send failed.
func (b *Broadcaster) Notify(ctx context.Context, text string) error {
	destinations, err := b.dir.Destinations(ctx, DestinationPageSize)
	if err != nil {
		return fmt.Errorf("listing destinations: %w", err)
	}

	if len(destinations) >= destinationWarnThreshold {
		logger.Warn("Destination count is near the page size, pagination is required to reach all of them", logger.Fields{
			"destinations": len(destinations),
			"page_size":    DestinationPageSize,
		})
	}

	var sent, failed int
	for _, dest := range destinations {
		logger.Debug("Processing destination", logger.Fields{"destination": dest.ID()})

		subchannels, err := dest.Subchannels(ctx)
		if err != nil {
			logger.Error("Unable to fetch channel list", logger.Fields{"destination": dest.ID()}, err)
			failed++
			continue
		}

		sub := findSubchannel(subchannels, b.channel)
		if sub == nil {
			continue
		}

		if b.limiter != nil {
			if err := b.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("waiting to send: %w", err)
			}
		}

		if err := sub.Send(ctx, text); err != nil {
			logger.Error("Unable to send message", logger.Fields{
				"destination": dest.ID(),
				"channel":     sub.Name(),
			}, err)
			failed++
			continue
		}
		sent++
		logger.Info("Completed sending message to destination", logger.Fields{"destination": dest.ID()})
	}

	if sent == 0 && failed > 0 {
		return fmt.Errorf("all %d destinations failed", failed)
	}
	return nil
}

// findSubchannel returns the first subchannel named name
func findSubchannel(subs []Subchannel, name string) Subchannel {
	for _, sub := range subs {
		if sub.Name() == name {
			return sub
		}
	}
	return nil
}
