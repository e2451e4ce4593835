// Package yamlutil splits and joins multi-document YAML streams such as the
// archives written by emit.YAMLSink.
package yamlutil

import (
	"bytes"
	"regexp"
	"strings"
)

// Separator starts every document in a joined stream.
const Separator = "---\n"

// docSeparator matches a line holding only "---", optionally followed by
// whitespace.
var docSeparator = regexp.MustCompile(`(?m)^---[ \t]*$\n?`)

// SplitDocuments splits a multi-document stream into its documents, without
// separators. Blank documents are dropped.
func SplitDocuments(data []byte) [][]byte {
	parts := docSeparator.Split(string(data), -1)

	var docs [][]byte

	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			docs = append(docs, []byte(part))
		}
	}

	return docs
}

// SplitDocumentsString is SplitDocuments returning strings.
func SplitDocumentsString(data []byte) []string {
	docs := SplitDocuments(data)
	if len(docs) == 0 {
		return nil
	}

	out := make([]string, len(docs))
	for i, d := range docs {
		out[i] = string(d)
	}

	return out
}

// JoinDocuments reassembles documents into a stream, each introduced by
// Separator and terminated by a newline.
func JoinDocuments(docs [][]byte) []byte {
	var buf bytes.Buffer

	for _, d := range docs {
		buf.WriteString(Separator)
		buf.Write(d)

		if len(d) > 0 && d[len(d)-1] != '\n' {
			buf.WriteByte('\n')
		}
	}

	return buf.Bytes()
}

// CountDocuments returns the number of non-blank documents in data.
func CountDocuments(data []byte) int {
	return len(SplitDocuments(data))
}
