package models

// Conversation roles accepted in chat history.
const (
	ChatRoleUser      = "user"
	ChatRoleAssistant = "assistant"
)

// ConversationMessage is one turn of transient chat context. History is
// supplied by the caller on each chat call and bounded by the orchestrator;
// it is not a stored entity.
type ConversationMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
