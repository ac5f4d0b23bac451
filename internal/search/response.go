// File path: internal/search/response.go
package search

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedResponse marks a search payload that did not decode into the
// expected {results: [...]} shape. Callers absorb it by substituting an empty
// result set; it never aborts a pipeline run.
var ErrMalformedResponse = errors.New("malformed search response")

// Record is one search hit: a flat projection of product attributes.
type Record map[string]interface{}

// Response is the decoded search payload.
type Response struct {
	Results []Record `json:"results"`
}

// DecodeResponse parses a raw search payload into a Response. Some service
// frontends double-encode the body as a JSON string; one level of unwrapping
// is tolerated. Anything that is not an object carrying a results array
// yields ErrMalformedResponse.
func DecodeResponse(data []byte) (*Response, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrMalformedResponse)
	}
	if data[0] == '"' {
		var unwrapped string
		if err := json.Unmarshal(data, &unwrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		data = bytes.TrimSpace([]byte(unwrapped))
	}
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("%w: not an object", ErrMalformedResponse)
	}
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	raw, ok := probe["results"]
	if !ok {
		return nil, fmt.Errorf("%w: missing results", ErrMalformedResponse)
	}
	var results []Record
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, fmt.Errorf("%w: results not an array of records: %v", ErrMalformedResponse, err)
	}
	return &Response{Results: results}, nil
}
