package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
)

// Canvas signals pagination through a structured Link header:
//
//	<https://school.instructure.com/api/v1/courses?page=2>; rel="next", <...>; rel="last"
//
// Absence of the "next" relation means the current page is the last one.
var nextLinkPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

func nextPageURL(linkHeader string) string {
	match := nextLinkPattern.FindStringSubmatch(linkHeader)
	if match == nil {
		return ""
	}
	return match[1]
}

// fetchAll walks a paginated Canvas collection to completion, preserving the
// server's page ordering. Pages are fetched strictly sequentially because
// each page's location is only known from the previous response. A
// non-success page aborts the whole walk: silent truncation would be worse
// than an explicit failure, so prior pages are discarded.
func fetchAll[T any](ctx context.Context, c *Client, session Session, path string, params url.Values) ([]T, error) {
	u, err := apiURL(session, path)
	if err != nil {
		return nil, err
	}

	q := u.Query()
	q.Set("per_page", strconv.Itoa(c.perPage))
	for key, values := range params {
		for _, v := range values {
			q.Add(key, v)
		}
	}
	u.RawQuery = q.Encode()

	var results []T
	next := u.String()

	for next != "" {
		resp, err := c.do(ctx, session, http.MethodGet, next, nil)
		if err != nil {
			return nil, err
		}

		body, readErr := readBody(resp)
		if readErr != nil {
			return nil, fmt.Errorf("reading page from %s: %w", path, readErr)
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, &UpstreamError{Status: resp.StatusCode, Body: string(body), Path: path}
		}

		var page []T
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, fmt.Errorf("decoding page from %s: %w", path, err)
		}
		results = append(results, page...)

		next = nextPageURL(resp.Header.Get("Link"))
	}

	return results, nil
}

func apiURL(session Session, path string) (*url.URL, error) {
	u, err := url.Parse(session.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid canvas base url: %w", err)
	}
	return u.JoinPath("/api/v1", path), nil
}
