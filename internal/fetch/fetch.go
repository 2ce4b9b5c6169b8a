// Package fetch orchestrates retrieval of Canvas collections, merging
// the API client with the local cache. Each resource kind is written to
// the cache as soon as it is fully fetched, so a run that fails partway
// through still leaves a usable partial cache for a later --use_cache
// invocation.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Harvard-ATG/canvas-lateness-tool/internal/cache"
	"github.com/Harvard-ATG/canvas-lateness-tool/internal/canvas"
)

// API is the Canvas client capability the fetcher needs.
type API interface {
	ListStudents(ctx context.Context, courseID string) ([]canvas.Student, error)
	ListAssignments(ctx context.Context, courseID string) ([]canvas.Assignment, error)
	ListSubmissions(ctx context.Context, courseID string, assignmentID int64) ([]canvas.Submission, error)
}

// Store is the cache capability the fetcher needs. A read miss is
// (nil, false, nil), never an error.
type Store interface {
	Read(courseID, kind, scopeID string) ([]byte, bool, error)
	Write(courseID, kind, scopeID string, payload []byte) error
}

// Fetcher retrieves collections from the API, consulting and updating
// the store. All fetches are sequential; there is exactly one in-flight
// API call at a time.
type Fetcher struct {
	API   API
	Store Store

	// Logf receives progress lines. Nil disables progress output.
	Logf func(format string, args ...any)
}

func (f *Fetcher) logf(format string, args ...any) {
	if f.Logf != nil {
		f.Logf(format, args...)
	}
}

// Students returns all students in the course. With useCache set and a
// cached collection present, the cached data is returned unchanged with
// zero network calls.
func (f *Fetcher) Students(ctx context.Context, courseID string, useCache bool) ([]canvas.Student, error) {
	if useCache {
		var cached []canvas.Student
		if f.readCached(courseID, cache.KindStudents, "", &cached) {
			f.logf("using cached students for course %s (%d students)", courseID, len(cached))
			return cached, nil
		}
	}

	f.logf("API fetching students for course %s", courseID)
	students, err := f.API.ListStudents(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("fetch students: %w", err)
	}
	if err := f.writeCached(courseID, cache.KindStudents, "", students); err != nil {
		return nil, err
	}
	return students, nil
}

// Assignments returns all assignments in the course, cache-first when
// useCache is set.
func (f *Fetcher) Assignments(ctx context.Context, courseID string, useCache bool) ([]canvas.Assignment, error) {
	if useCache {
		var cached []canvas.Assignment
		if f.readCached(courseID, cache.KindAssignments, "", &cached) {
			f.logf("using cached assignments for course %s (%d assignments)", courseID, len(cached))
			return cached, nil
		}
	}

	f.logf("API fetching assignments for course %s", courseID)
	assignments, err := f.API.ListAssignments(ctx, courseID)
	if err != nil {
		return nil, fmt.Errorf("fetch assignments: %w", err)
	}
	if err := f.writeCached(courseID, cache.KindAssignments, "", assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// Submissions returns the flat concatenation of submission records for
// the given assignments, in assignment order. Each assignment's
// collection is cached under its own scope as soon as it is fetched, so
// an interrupted run resumes from the first uncached assignment.
func (f *Fetcher) Submissions(ctx context.Context, courseID string, assignmentIDs []int64, useCache bool) ([]canvas.Submission, error) {
	var all []canvas.Submission
	total := len(assignmentIDs)
	for i, assignmentID := range assignmentIDs {
		scope := strconv.FormatInt(assignmentID, 10)

		if useCache {
			var cached []canvas.Submission
			if f.readCached(courseID, cache.KindSubmissions, scope, &cached) {
				f.logf("[%d of %d] using cached submissions for assignment %d", i+1, total, assignmentID)
				all = append(all, cached...)
				continue
			}
		}

		f.logf("[%d of %d] fetching submissions for assignment %d", i+1, total, assignmentID)
		subs, err := f.API.ListSubmissions(ctx, courseID, assignmentID)
		if err != nil {
			return nil, fmt.Errorf("fetch submissions for assignment %d: %w", assignmentID, err)
		}
		if err := f.writeCached(courseID, cache.KindSubmissions, scope, subs); err != nil {
			return nil, err
		}
		all = append(all, subs...)
	}
	return all, nil
}

// readCached loads a cached collection into out. Any store error or
// corrupt payload is treated as a miss, forcing a refetch.
func (f *Fetcher) readCached(courseID, kind, scopeID string, out any) bool {
	payload, ok, err := f.Store.Read(courseID, kind, scopeID)
	if err != nil {
		f.logf("cache read for %s/%s failed, refetching: %v", kind, scopeID, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal(payload, out); err != nil {
		f.logf("cache entry for %s/%s is corrupt, refetching: %v", kind, scopeID, err)
		return false
	}
	return true
}

func (f *Fetcher) writeCached(courseID, kind, scopeID string, collection any) error {
	payload, err := json.Marshal(collection)
	if err != nil {
		return fmt.Errorf("encode %s for cache: %w", kind, err)
	}
	if err := f.Store.Write(courseID, kind, scopeID, payload); err != nil {
		return fmt.Errorf("cache %s: %w", kind, err)
	}
	return nil
}
