package assistant

import "time"

// Sender identifies the author of a transcript message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// DisplayName is the label shown next to a message in the panel.
func (s Sender) DisplayName() string {
	if s == SenderBot {
		return "CodeHelper"
	}
	return "Вы"
}

// Message is one transcript entry.
type Message struct {
	Sender Sender    `json:"sender"`
	Text   string    `json:"text"`
	At     time.Time `json:"at"`
}
