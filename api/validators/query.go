package validators

import (
	"net/http"
	"strconv"
	"strings"

	pkgerrors "github.com/angelmondragon/storefront/pkg/errors"
	"github.com/angelmondragon/storefront/pkg/pagination"
)

// ParsePagination reads the limit and cursor query parameters. A missing limit
// falls back to the default page size.
func ParsePagination(r *http.Request) (pagination.Params, error) {
	query := r.URL.Query()
	params := pagination.Params{Cursor: strings.TrimSpace(query.Get("cursor"))}

	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			return pagination.Params{}, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer").WithDetails(map[string]any{"field": "limit"})
		}
		params.Limit = limit
	}
	params.Limit = pagination.NormalizeLimit(params.Limit)
	return params, nil
}
