package domain

// Speaker identifies who authored a transcript entry.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Message is one transcript entry. Text may contain literal newlines.
// Options is only populated on assistant messages.
type Message struct {
	Speaker Speaker  `json:"speaker"`
	Text    string   `json:"text"`
	Options []string `json:"options,omitempty"`
}

// UserMessage builds a user transcript entry.
func UserMessage(text string) Message {
	return Message{Speaker: SpeakerUser, Text: text}
}

// AssistantMessage builds an assistant transcript entry with follow-up options.
func AssistantMessage(text string, options ...string) Message {
	return Message{Speaker: SpeakerAssistant, Text: text, Options: options}
}

// Clone returns a copy that shares no backing array with m.
func (m Message) Clone() Message {
	if m.Options != nil {
		m.Options = append([]string(nil), m.Options...)
	}
	return m
}
