// Package extract turns medical text into categorized entities and
// relation triples.
//
// PatternExtractor is deterministic and has no external dependencies.
// ModelExtractor runs an optional rag.Recognizer (for example an
// LLMRecognizer) and falls back to the patterns whenever the recognizer is
// missing, fails, panics or times out. RelationExtractor applies
// subject-verb-object templates and keeps only triples that touch an
// extracted entity.
package extract
