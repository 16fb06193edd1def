package taledb

import (
	"encoding/json"
	"fmt"

	"github.com/taledb/taledb-go/pkg/taledb/errors"
	"github.com/taledb/taledb-go/pkg/taledb/values"
)

// QueryResult wraps the resource payload of a successful query response.
// Tagged wire values inside the resource have been decoded into their
// typed counterparts.
type QueryResult struct {
	Resource any
}

func NewQueryResult(resource any) *QueryResult {
	return &QueryResult{Resource: resource}
}

// NewQueryResultFromJSON decodes a raw response body.
func NewQueryResultFromJSON(body []byte) (*QueryResult, error) {
	envelope := struct {
		Resource json.RawMessage `json:"resource"`
	}{}

	err := json.Unmarshal(body, &envelope)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %s (%w)", err.Error(), errors.ErrBadResponse)
	}

	if envelope.Resource == nil {
		return nil, fmt.Errorf("response carries no resource (%w)", errors.ErrBadResponse)
	}

	resource, err := values.DecodeJSON(envelope.Resource)
	if err != nil {
		return nil, fmt.Errorf("failed to decode resource: %s (%w)", err.Error(), errors.ErrBadResponse)
	}

	return &QueryResult{Resource: resource}, nil
}

// Decode re-encodes the resource into dst, which should be a pointer to a
// struct or map matching the resource's shape.
func (r QueryResult) Decode(dst any) error {
	b, err := json.Marshal(r.Resource)
	if err != nil {
		return err
	}

	return json.Unmarshal(b, dst)
}

// Page returns the resource as a result page. Fails when the resource is
// not a paginated response object.
func (r QueryResult) Page() (values.Page, error) {
	raw, ok := r.Resource.(map[string]any)
	if !ok {
		return values.Page{}, fmt.Errorf("resource is not a result page (%w)", errors.ErrBadResponse)
	}

	return values.PageFromRaw(raw), nil
}
