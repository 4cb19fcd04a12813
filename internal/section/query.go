package section

import (
	"encoding/json"
	"net/url"
	"strings"
)

// QueryParam is the URL parameter carrying the selection.
const QueryParam = "sectionIds"

// ParseSectionIDs decodes a JSON integer array such as "[1,2,3]". Empty or
// malformed input is an empty selection, never an error.
func ParseSectionIDs(raw string) []int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []int64{}
	}
	var ids []int64
	if err := json.Unmarshal([]byte(raw), &ids); err != nil || ids == nil {
		return []int64{}
	}
	return ids
}

// FromQuery reads the selection from the sectionIds parameter.
func FromQuery(q url.Values) []int64 {
	return ParseSectionIDs(q.Get(QueryParam))
}

// EncodeSectionIDs is the inverse of ParseSectionIDs.
func EncodeSectionIDs(ids []int64) string {
	if len(ids) == 0 {
		return "[]"
	}
	b, err := json.Marshal(ids)
	if err != nil {
		return "[]"
	}
	return string(b)
}
