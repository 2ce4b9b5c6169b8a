// Package canvas provides a minimal client for the Canvas LMS REST API,
// covering the three collections the lateness report needs: students in
// a course, assignments, and submissions per assignment.
//
// The client follows Canvas pagination (the Link response header with
// rel="next") and accumulates all pages into a single slice in fetch
// order. It performs no retries; transport and auth failures surface to
// the caller as errors.
package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// DefaultPerPage is the page size requested from the API.
const DefaultPerPage = 100

// ErrUnauthorized is returned when the API rejects the OAuth token.
var ErrUnauthorized = errors.New("canvas: unauthorized")

// Client talks to a Canvas instance.
type Client struct {
	// BaseURL is the Canvas instance root, e.g. https://canvas.example.edu.
	BaseURL string

	// Token is the OAuth bearer token.
	Token string

	// PerPage is the page size. Zero means DefaultPerPage.
	PerPage int

	// HTTPClient is the underlying HTTP client. Nil means http.DefaultClient.
	HTTPClient *http.Client

	// Logf, when set, receives a debug line per request.
	Logf func(format string, args ...any)
}

// NewClient returns a client for the given Canvas instance.
func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		PerPage: DefaultPerPage,
	}
}

// ListStudents returns all students enrolled in the course, across all
// pages, in the order the API returns them.
func (c *Client) ListStudents(ctx context.Context, courseID string) ([]Student, error) {
	q := url.Values{}
	q.Add("enrollment_type[]", "student")
	q.Add("include[]", "email")
	return listAll[Student](ctx, c, fmt.Sprintf("/api/v1/courses/%s/users", url.PathEscape(courseID)), q)
}

// ListAssignments returns all assignments in the course.
func (c *Client) ListAssignments(ctx context.Context, courseID string) ([]Assignment, error) {
	return listAll[Assignment](ctx, c, fmt.Sprintf("/api/v1/courses/%s/assignments", url.PathEscape(courseID)), nil)
}

// ListSubmissions returns all submission records for one assignment.
// Submissions are not globally fetchable in one call; callers iterate
// assignment IDs.
func (c *Client) ListSubmissions(ctx context.Context, courseID string, assignmentID int64) ([]Submission, error) {
	q := url.Values{}
	q.Add("include[]", "assignment")
	path := fmt.Sprintf("/api/v1/courses/%s/assignments/%d/submissions", url.PathEscape(courseID), assignmentID)
	return listAll[Submission](ctx, c, path, q)
}

// listAll fetches every page of a paginated collection endpoint.
func listAll[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	perPage := c.PerPage
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	if query == nil {
		query = url.Values{}
	}
	query.Set("per_page", strconv.Itoa(perPage))

	next := c.BaseURL + path + "?" + query.Encode()
	var all []T
	for next != "" {
		page, nextURL, err := getPage[T](ctx, c, next)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		next = nextURL
	}
	return all, nil
}

// getPage fetches a single page and returns the rel="next" URL, if any.
func getPage[T any](ctx context.Context, c *Client, pageURL string) ([]T, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.Token)
	req.Header.Set("Accept", "application/json")

	if c.Logf != nil {
		c.Logf("GET %s", pageURL)
	}

	client := c.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("canvas request: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, "", fmt.Errorf("%w (status %d)", ErrUnauthorized, resp.StatusCode)
	case resp.StatusCode >= 300:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("canvas status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var page []T
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, "", fmt.Errorf("decode canvas response: %w", err)
	}
	return page, nextPageURL(resp.Header.Get("Link")), nil
}

// nextPageURL extracts the rel="next" URL from a Link header.
// Canvas emits RFC 5988 links: <url>; rel="next", <url>; rel="last".
func nextPageURL(link string) string {
	for _, part := range strings.Split(link, ",") {
		segs := strings.Split(part, ";")
		if len(segs) < 2 {
			continue
		}
		target := strings.Trim(strings.TrimSpace(segs[0]), "<>")
		for _, attr := range segs[1:] {
			if strings.TrimSpace(attr) == `rel="next"` {
				return target
			}
		}
	}
	return ""
}
