package query

// PaginateOptionFunc modifies a paginate expression before it is sent.
type PaginateOptionFunc func(fn)

// Size limits the number of elements per page.
func Size(size int) PaginateOptionFunc {
	return func(q fn) {
		q["size"] = size
	}
}

// Before asks for the page preceding the given cursor.
func Before(cursor any) PaginateOptionFunc {
	return func(q fn) {
		q["before"] = wrap(cursor)
	}
}

// After asks for the page following the given cursor.
func After(cursor any) PaginateOptionFunc {
	return func(q fn) {
		q["after"] = wrap(cursor)
	}
}

// TS pins the pagination to a snapshot time.
func TS(timestamp any) PaginateOptionFunc {
	return func(q fn) {
		q["ts"] = wrap(timestamp)
	}
}

// Events asks for the event history of the set instead of its members.
func Events(enabled bool) PaginateOptionFunc {
	return func(q fn) {
		q["events"] = enabled
	}
}

// Sources annotates every element with the sets it came from.
func Sources(enabled bool) PaginateOptionFunc {
	return func(q fn) {
		q["sources"] = enabled
	}
}

// Paginate materializes a page of the given set. The set may be a set
// expression, a set ref from an earlier response, or a class ref.
func Paginate(set any, options ...PaginateOptionFunc) Expr {
	q := fn{"paginate": wrap(set)}

	for _, applyOption := range options {
		applyOption(q)
	}

	return q
}
