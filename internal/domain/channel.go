package domain

import "context"

// Announcer delivers finished text to a single destination channel.
type Announcer interface {
	// SendText posts text to the channel identified by channelID.
	SendText(ctx context.Context, channelID, text string) error
}

// AnnouncerFunc adapts a plain function to the Announcer interface.
type AnnouncerFunc func(ctx context.Context, channelID, text string) error

// SendText calls f.
func (f AnnouncerFunc) SendText(ctx context.Context, channelID, text string) error {
	return f(ctx, channelID, text)
}
