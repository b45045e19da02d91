// Package analysis runs the startup assessments.
//
// Analyzer produces one success prediction: the prompt is normalized, indexed
// into an ephemeral vector store, the chunks most relevant to
// "Predict startup success" become the context, and the embedded success
// prompt is run through the chat model.
//
// Panel sends the same context to five analyst roles (financial, VC, CTO,
// marketing, product) as parallel nodes of a graph.StateGraph and returns
// one section per role.
//
// Prompt templates live in prompts/*.md and are embedded in the binary.
package analysis
