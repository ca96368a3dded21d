package tui

import "github.com/mmcdole/flightdeck/internal/domain"

// ChannelSink adapts domain.NotificationSink to a channel for Bubble Tea.
type ChannelSink struct {
	ch chan<- NotificationMsg
}

var _ domain.NotificationSink = (*ChannelSink)(nil)

// NewChannelSink creates a new channel-based sink.
func NewChannelSink(ch chan<- NotificationMsg) *ChannelSink {
	return &ChannelSink{ch: ch}
}

// ShowError sends an error toast (non-blocking if full).
func (s *ChannelSink) ShowError(message string) {
	s.send(NotificationMsg{Text: message, IsErr: true})
}

// ShowSuccess sends a success toast (non-blocking if full).
func (s *ChannelSink) ShowSuccess(message string) {
	s.send(NotificationMsg{Text: message})
}

func (s *ChannelSink) send(msg NotificationMsg) {
	select {
	case s.ch <- msg:
	default: // Non-blocking if channel full
	}
}
