// Package rag turns a startup description into retrieval context.
//
// The flow for one request is:
//
//	text := rag.NormalizePrompt(prompt)     // editor HTML -> plain text
//	r, err := builder.Build(ctx, embedder, text)
//	defer r.Close(ctx)
//	context, err := r.Context(ctx, rag.DefaultQuery)
//
// Build splits the text with langchaingo's recursive character splitter,
// embeds the chunks into a fresh collection from a store.Factory and wraps
// that collection in a vectorstores.Retriever. Context joins the retrieved
// chunks with blank lines.
package rag
