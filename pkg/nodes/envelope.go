// Package nodes holds the envelope helpers shared by the built-in pipeline
// node implementations in its subpackages.
//
// Stages pass a carried value down the pipeline: the input node receives the
// raw test input as a string, every later stage receives the map envelope
// produced by its predecessor.
package nodes

import "github.com/raglinehq/ragline/pkg/protocol"

// Text extracts the working text from a carried value: the value itself when
// it is a raw string, otherwise the "text" field of the envelope.
func Text(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case map[string]any:
		text, ok := v["text"].(string)

		return text, ok
	default:
		return "", false
	}
}

// Field returns a named entry from an envelope value.
func Field(value any, key string) (any, bool) {
	envelope, ok := value.(map[string]any)
	if !ok {
		return nil, false
	}

	field, ok := envelope[key]

	return field, ok
}

// StringField returns a named string entry from an envelope value.
func StringField(value any, key string) (string, bool) {
	field, ok := Field(value, key)
	if !ok {
		return "", false
	}

	s, ok := field.(string)

	return s, ok
}

// Documents returns the retrieved documents carried in an envelope, if any.
func Documents(value any) []protocol.Document {
	field, ok := Field(value, "documents")
	if !ok {
		return nil
	}

	if docs, ok := field.([]protocol.Document); ok {
		return docs
	}

	// Envelopes that have been through a JSON round trip carry documents as
	// generic maps.
	raw, ok := field.([]any)
	if !ok {
		return nil
	}

	docs := make([]protocol.Document, 0, len(raw))

	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		doc := protocol.Document{}
		doc.ID, _ = m["id"].(string)
		doc.Title, _ = m["title"].(string)
		doc.Content, _ = m["content"].(string)
		doc.Source, _ = m["source"].(string)

		if relevance, ok := m["relevance"].(float64); ok {
			doc.Relevance = relevance
		}

		docs = append(docs, doc)
	}

	return docs
}
