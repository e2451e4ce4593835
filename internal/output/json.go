package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	sigsyaml "sigs.k8s.io/yaml"

	"github.com/hupe1980/graphyaml/internal/yamlutil"
)

// DocumentsToJSON converts a multi-document YAML archive into an indented
// JSON array, one element per document, in document order. Keys within a
// document are sorted.
func DocumentsToJSON(data []byte, indent int) ([]byte, error) {
	if indent <= 0 {
		indent = 2
	}

	docs := yamlutil.SplitDocuments(data)

	var compact bytes.Buffer

	compact.WriteByte('[')

	for i, doc := range docs {
		j, err := sigsyaml.YAMLToJSON(doc)
		if err != nil {
			return nil, fmt.Errorf("converting document %d to JSON: %w", i+1, err)
		}

		if i > 0 {
			compact.WriteByte(',')
		}

		compact.Write(j)
	}

	compact.WriteByte(']')

	var out bytes.Buffer
	if err := json.Indent(&out, compact.Bytes(), "", strings.Repeat(" ", indent)); err != nil {
		return nil, fmt.Errorf("formatting JSON: %w", err)
	}

	out.WriteByte('\n')

	return out.Bytes(), nil
}
