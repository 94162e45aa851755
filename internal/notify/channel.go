// Package notify delivers recommendation payloads over the configured
// channels. The channel is picked from the shape of the resolved address: an
// address containing "@" goes out as email, anything else as a chat message.
package notify

import (
	"context"
	"errors"
	"strings"
)

var (
	ErrNoChannel = errors.New("notify: no channel configured for address kind")
)

type Delivery struct {
	ID     string
	Status string
}

type Channel interface {
	Send(ctx context.Context, address, subject, body string) (Delivery, error)
}

type AddressKind int

const (
	AddressUnknown AddressKind = iota
	AddressEmail
	AddressChat
)

func KindOf(address string) AddressKind {
	address = strings.TrimSpace(address)
	if address == "" {
		return AddressUnknown
	}
	if strings.Contains(address, "@") {
		return AddressEmail
	}
	return AddressChat
}

// Router picks the channel matching the address shape. Either channel may be
// nil when its provider is not configured.
type Router struct {
	Chat  Channel
	Email Channel
}

func (r *Router) Send(ctx context.Context, address, subject, body string) (Delivery, error) {
	var ch Channel
	switch KindOf(address) {
	case AddressEmail:
		ch = r.Email
	case AddressChat:
		ch = r.Chat
	}
	if ch == nil {
		return Delivery{}, ErrNoChannel
	}
	return ch.Send(ctx, address, subject, body)
}
