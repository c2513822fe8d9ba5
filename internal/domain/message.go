package domain

import "time"

// ChatEvent is a chat post read from the bridged source channel.
type ChatEvent struct {
	ID         string    `json:"id"`
	Author     string    `json:"author"`
	Body       string    `json:"body"`
	Target     string    `json:"target"`
	ReceivedAt time.Time `json:"receivedAt"`
}

// OutboundMessage is fully formatted text ready to be announced on every
// destination channel.
type OutboundMessage struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}
