package navigation

type MessageKind string

const (
	MessageInfo    MessageKind = "info"
	MessageSuccess MessageKind = "success"
	MessageError   MessageKind = "error"
)

type Message struct {
	Kind MessageKind `json:"type"`
	Text string      `json:"text"`
}

func (m Message) Title() string {
	switch m.Kind {
	case MessageError:
		return "Error"
	case MessageSuccess:
		return "Success"
	}
	return "Message"
}

func Info(text string) *Message    { return &Message{Kind: MessageInfo, Text: text} }
func Success(text string) *Message { return &Message{Kind: MessageSuccess, Text: text} }
func Error(text string) *Message   { return &Message{Kind: MessageError, Text: text} }
