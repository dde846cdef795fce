package services

import "fmt"

// GetSystemPrompt defines the core instructions for the legal assistant.
// Answers must come strictly from the retrieved context; questions the
// context cannot answer get an explicit refusal instead of a guess.
func GetSystemPrompt() string {
	return `You are a legal assistant specialized in Omani laws. Answer the question based ONLY on the context provided.
If the context doesn't contain the information needed to answer the question, say "I don't have enough information to answer this question based on the Omani legal documents I have access to."
Do not make up or infer information that is not explicitly stated in the context. Answer in the language of the question, whether Arabic or English.`
}

// BuildQAPrompt assembles the user prompt from the retrieved context block
// and the question.
func BuildQAPrompt(contextText, question string) string {
	return fmt.Sprintf("\nContext:\n%s\n\nQuestion:\n%s\n\nAnswer:\n", contextText, question)
}

// NoAnswerMessage is returned when retrieval produced no context at all.
const NoAnswerMessage = "I don't have enough information to answer this question based on the Omani legal documents I have access to."
