package domain

// ConversationTurn is a single prior exchange supplied by the caller.
// Never persisted.
type ConversationTurn struct {
	Role    string
	Content string
}

// ChatResult is the outcome of one pipeline invocation.
type ChatResult struct {
	Answer  string
	Sources []ScoredPassage
}
