// Package paginate drives cursor-based fetching against the routing API
// until the server stops handing out cursors.
package paginate

import (
	"context"
	"fmt"

	"optimaflow/internal/storage"
)

// Page is one fetch result. Orders must be the full collection including
// everything fetched so far: the callee receives the accumulated slice and
// decides how to append (merge, replace, filter). Finished is the server's
// explicit completion flag when the response carries one.
type Page struct {
	Orders     []storage.WorkOrder
	AfterTag   string
	Finished   *bool
	TotalCount int
}

// FetchFunc retrieves one page. afterTag is empty on the first call.
type FetchFunc func(ctx context.Context, afterTag string, collected []storage.WorkOrder) (Page, error)

// Result carries the folded collection and the counters kept for
// observability.
type Result struct {
	Orders            []storage.WorkOrder
	Pages             int
	TotalBeforeFilter int
}

// Run fetches pages until the continuation predicate fails: it continues iff
// the last page carried a non-empty cursor and did not explicitly report
// finished. Fetch errors are terminal and propagate as-is; there is no retry
// here. No page or time bound is enforced beyond the server's own cursor
// semantics.
func Run(ctx context.Context, fetch FetchFunc) (Result, error) {
	const op = "service.paginate.Run"

	var res Result
	afterTag := ""

	for {
		page, err := fetch(ctx, afterTag, res.Orders)
		if err != nil {
			return Result{}, fmt.Errorf("%s: page %d: %w", op, res.Pages+1, err)
		}

		res.Orders = page.Orders
		res.Pages++
		res.TotalBeforeFilter += page.TotalCount

		if page.AfterTag == "" {
			return res, nil
		}
		if page.Finished != nil && *page.Finished {
			return res, nil
		}

		afterTag = page.AfterTag
	}
}
