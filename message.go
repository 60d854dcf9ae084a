package quill

// Message is a single entry in a conversation. Messages are append-only:
// once appended they never change, except for the trailing assistant
// message, which is the live target of streaming updates.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
