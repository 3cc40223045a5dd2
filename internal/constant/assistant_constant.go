package constant

// Message roles persisted with each chat message
const (
	ChatMessageRoleUser      = "user"
	ChatMessageRoleAssistant = "assistant"
)

// NoRelevantInfoMarker is the single context entry returned when retrieval
// finds nothing usable. Downstream nodes always receive at least one
// context entry to reason about.
const NoRelevantInfoMarker = "No relevant information was found in the document corpus."

// Classification output contract: anything other than the retrieval token
// routes to the direct path.
const (
	ClassifyTokenRetrieve = "RETRIEVE"
	ClassifyTokenDirect   = "DIRECT"
)
