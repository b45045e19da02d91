package rag

import (
	"fmt"

	"github.com/tmc/langchaingo/schema"
	"github.com/tmc/langchaingo/textsplitter"
)

// Default splitting parameters.
const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// NewSplitter returns a recursive character splitter. Non-positive values fall back to the defaults.
func NewSplitter(chunkSize, chunkOverlap int) textsplitter.TextSplitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = min(DefaultChunkOverlap, chunkSize/5)
	}
	return textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(chunkSize),
		textsplitter.WithChunkOverlap(chunkOverlap),
	)
}

// Split chunks text into documents tagged with their chunk index.
func Split(splitter textsplitter.TextSplitter, text string) ([]schema.Document, error) {
	docs, err := textsplitter.CreateDocuments(splitter, []string{text}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to split text: %w", err)
	}
	for i := range docs {
		if docs[i].Metadata == nil {
			docs[i].Metadata = map[string]any{}
		}
		docs[i].Metadata["chunk"] = i
	}
	return docs, nil
}
