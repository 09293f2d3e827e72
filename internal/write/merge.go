package write

import (
	"bytes"
	"encoding/json"
)

// mergeDocuments deep-merges two JSON object documents. The second
// return is false when either side is not a JSON object, in which case
// the caller falls back to overwrite.
func mergeDocuments(existing, incoming []byte) ([]byte, bool) {
	var existingDoc, incomingDoc map[string]any
	if err := json.Unmarshal(existing, &existingDoc); err != nil {
		return nil, false
	}
	if err := json.Unmarshal(incoming, &incomingDoc); err != nil {
		return nil, false
	}

	merged := mergeMaps(existingDoc, incomingDoc)

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(merged); err != nil {
		return nil, false
	}
	return buf.Bytes(), true
}

// mergeMaps merges incoming into existing recursively. Keys present
// only in existing survive; where both sides hold objects they merge;
// everywhere else the incoming value wins.
func mergeMaps(existing, incoming map[string]any) map[string]any {
	out := make(map[string]any, len(existing)+len(incoming))
	for k, v := range existing {
		out[k] = v
	}
	for k, v := range incoming {
		incomingMap, incomingIsMap := v.(map[string]any)
		existingMap, existingIsMap := out[k].(map[string]any)
		if incomingIsMap && existingIsMap {
			out[k] = mergeMaps(existingMap, incomingMap)
			continue
		}
		out[k] = v
	}
	return out
}
