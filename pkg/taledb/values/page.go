package values

// Page holds one page of paginated results together with the optional
// cursors for the surrounding pages. Data is always a slice; Before and
// After are nil when the database did not return a cursor.
type Page struct {
	Data   []any
	Before any
	After  any
}

// PageFromRaw builds a Page from a decoded response object carrying data,
// before and after fields. The shapes of the elements inside data are not
// validated.
func PageFromRaw(raw map[string]any) Page {
	p := Page{Data: []any{}}

	if data, ok := raw["data"].([]any); ok {
		p.Data = data
	}

	p.Before = raw["before"]
	p.After = raw["after"]

	return p
}

// MapData returns a new Page with transform applied to every element of
// Data, exactly once per element and in order. The cursors are carried over
// untouched and the receiver is left unmodified.
func (p Page) MapData(transform func(any) any) Page {
	mapped := make([]any, len(p.Data))

	for i, element := range p.Data {
		mapped[i] = transform(element)
	}

	return Page{
		Data:   mapped,
		Before: p.Before,
		After:  p.After,
	}
}
