package engine

import (
	"strings"
)

const (
	documentSection = "Document Context:\n"
	graphSection    = "Knowledge Graph Relationships:\n"

	// contextDocuments is how many vector results go into the prompt.
	contextDocuments = 2
)

const promptTemplate = `You are a specialized medical assistant. Your main role is to answer health and medical questions.

Use both sources below. Prefer the knowledge graph for how conditions, symptoms and treatments relate to each other, and the documents for details. Give a clear and accurate answer.

Instructions:
- If the user thanks you, reply with a short, friendly message.
- If greeted, respond politely and offer help.
- For medical or health questions, give a brief definition (1-2 sentences), then 3-4 key points as bullets separated by blank lines. Add a disclaimer only for medical advice or diagnosis.
- For non-medical topics, politely decline and suggest a health-related question.

{context}

User Question: {question}

Answer:
`

// BuildContext fuses retrieval results into labeled sections: the first two
// vector results, trimmed, and every graph triple. Empty sections are left
// out.
func BuildContext(vectorResults, graphResults []string) string {
	var sections []string
	if len(vectorResults) > 0 {
		docs := vectorResults[:min(len(vectorResults), contextDocuments)]
		trimmed := make([]string, len(docs))
		for i, d := range docs {
			trimmed[i] = strings.TrimSpace(d)
		}
		sections = append(sections, documentSection+strings.Join(trimmed, "\n---\n"))
	}
	if len(graphResults) > 0 {
		sections = append(sections, graphSection+strings.Join(graphResults, "\n"))
	}
	return strings.Join(sections, "\n\n")
}

// BuildPrompt fills the assistant template with the fused context and the
// user's question.
func BuildPrompt(query, context string) string {
	return strings.NewReplacer("{context}", context, "{question}", query).Replace(promptTemplate)
}
