package domain

// Event types visible on the wire, server to client only.
const (
	EventStatus    = "status"
	EventAIChunk   = "ai_chunk"
	EventError     = "error"
	EventFinalData = "final_data"
)

// Event is one outbound protocol message.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// FinalPayload wraps the collected comments for the final_data event.
type FinalPayload struct {
	Comments []CollectedComment `json:"comments"`
}

func StatusEvent(msg string) Event {
	return Event{Type: EventStatus, Payload: msg}
}

func ChunkEvent(text string) Event {
	return Event{Type: EventAIChunk, Payload: text}
}

func ErrorEvent(msg string) Event {
	return Event{Type: EventError, Payload: msg}
}

func FinalDataEvent(comments []CollectedComment) Event {
	if comments == nil {
		comments = []CollectedComment{}
	}
	return Event{Type: EventFinalData, Payload: FinalPayload{Comments: comments}}
}

// Emitter delivers one event to the session's client. A non-nil error means
// the client is gone and the caller must stop emitting.
type Emitter func(Event) error
