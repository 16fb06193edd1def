package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/diwise/service-chassis/pkg/infrastructure/o11y/logging"
	"github.com/taledb/taledb-go/pkg/taledb/query"
)

// QueryPaged follows the after cursors of a paginated set until it is
// exhausted, re-encoding every element into T and handing it to callback.
// Returns the total number of elements seen.
func QueryPaged[T any](ctx context.Context, c DatabaseClient, set query.Expr, callback func(t T), options ...query.PaginateOptionFunc) (count int, err error) {

	logger := logging.GetFromContext(ctx)

	pageOptions := make([]query.PaginateOptionFunc, len(options), len(options)+1)
	copy(pageOptions, options)

	for {
		page, perr := c.Paginate(ctx, set, pageOptions...)
		if perr != nil {
			err = perr
			return
		}

		for _, element := range page.Data {
			var t T

			b, merr := json.Marshal(element)
			if merr != nil {
				err = fmt.Errorf("failed to encode page element: %w", merr)
				return
			}

			if merr = json.Unmarshal(b, &t); merr != nil {
				err = fmt.Errorf("failed to decode page element: %w", merr)
				return
			}

			callback(t)
		}

		count += len(page.Data)

		if page.After == nil {
			break
		}

		logger.Debug("following page cursor", "count", count)

		pageOptions = append(pageOptions[:len(options):len(options)], query.After(page.After))
	}

	return count, nil
}
