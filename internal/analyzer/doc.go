// Package analyzer extracts learning events from completed session
// transcripts. It walks the ordered transcript once, classifies each
// learner turn against the curriculum's vocabulary and grammar
// inventory, and derives the summary, highlights, recommendations,
// and lesson-completion facts that feed the learner's memory.
package analyzer
