package values

import "encoding/json"

// Decode walks a JSON decoded payload and replaces tagged objects with
// their typed counterparts. Objects whose single key is one of the wire
// tags become Ref, SetRef, Timestamp or Date values; arrays and untagged
// objects are walked recursively; everything else passes through unchanged.
func Decode(raw any) any {
	switch typed := raw.(type) {
	case map[string]any:
		if len(typed) == 1 {
			if value, ok := decodeTagged(typed); ok {
				return value
			}
		}

		decoded := make(map[string]any, len(typed))
		for k, v := range typed {
			decoded[k] = Decode(v)
		}
		return decoded
	case []any:
		decoded := make([]any, len(typed))
		for i, v := range typed {
			decoded[i] = Decode(v)
		}
		return decoded
	default:
		return raw
	}
}

func decodeTagged(obj map[string]any) (Value, bool) {
	if path, ok := obj[TagRef].(string); ok {
		return NewRef(path), true
	}

	if query, ok := obj[TagSet]; ok {
		return NewSetRef(RawExpr{Value: Decode(query)}), true
	}

	if ts, ok := obj[TagTime].(string); ok {
		// the database only emits UTC instants, so a tagged timestamp that
		// fails the Z check is left as an untagged object for the caller
		t, err := TimestampFromString(ts)
		if err == nil {
			return t, true
		}
	}

	if date, ok := obj[TagDate].(string); ok {
		return DateFromString(date), true
	}

	return nil, false
}

// DecodeJSON unmarshals body and decodes any tagged values in it.
func DecodeJSON(body []byte) (any, error) {
	var raw any

	err := json.Unmarshal(body, &raw)
	if err != nil {
		return nil, err
	}

	return Decode(raw), nil
}
