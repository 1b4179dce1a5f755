package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vesselsim/vesselsim/pkg/cachestore"
)

const rosterBody = `{
	"dailyDeployments": [
		{
			"date": "2026-08-29",
			"routes": [
				{"shipName": "MS Helvetia", "courseNumber": "3733"},
				{"shipName": "MS Linth", "courseNumber": "057"},
				{"shipName": "MS Albis", "courseNumber": "123456"}
			]
		},
		{
			"date": "2026-08-27",
			"routes": [
				{"shipName": "MS Wädenswil", "courseNumber": "21"}
			]
		}
	],
	"lastUpdated": "2026-08-29T06:00:00+02:00"
}`

func newTestResolver(server *httptest.Server) *Resolver {
	return NewResolver(server.URL,
		cachestore.NewMemory[[]DailyDeployment](time.Hour, 8),
		cachestore.NewMemory[string](time.Hour, 64))
}

func TestResolveName(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rosterBody)
	}))
	defer server.Close()

	resolver := newTestResolver(server)
	ctx := context.Background()

	testCases := []struct {
		name         string
		courseNumber string
		date         string
		expected     string
	}{
		{"exact match", "3733", "2026-08-29", "MS Helvetia"},
		{"leading zeros on roster side", "57", "2026-08-29", "MS Linth"},
		{"leading zeros on query side", "0021", "2026-08-27", "MS Wädenswil"},
		{"adjacent day before", "3733", "2026-08-30", "MS Helvetia"},
		{"adjacent day after", "21", "2026-08-26", "MS Wädenswil"},
		{"course embedded in longer number", "456", "2026-08-29", "MS Albis"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			name, err := resolver.ResolveName(ctx, testCase.courseNumber, testCase.date)
			if err != nil {
				t.Fatal(err)
			}
			if name != testCase.expected {
				t.Errorf("got %q, expected %q", name, testCase.expected)
			}
		})
	}
}

func TestResolveNameUnresolved(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, rosterBody)
	}))
	defer server.Close()

	resolver := newTestResolver(server)

	testCases := []struct {
		name         string
		courseNumber string
		date         string
	}{
		{"unknown course", "999", "2026-08-29"},
		{"date too far away", "3733", "2026-08-25"},
		{"empty course number", "", "2026-08-29"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := resolver.ResolveName(context.Background(), testCase.courseNumber, testCase.date)
			if !errors.Is(err, ErrUnresolved) {
				t.Errorf("expected ErrUnresolved, got %v", err)
			}
		})
	}
}

func TestResolveNameUsesCaches(t *testing.T) {
	var requests atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		fmt.Fprint(w, rosterBody)
	}))
	defer server.Close()

	resolver := newTestResolver(server)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := resolver.ResolveName(ctx, "3733", "2026-08-29"); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := resolver.ResolveName(ctx, "57", "2026-08-29"); err != nil {
		t.Fatal(err)
	}

	if requests.Load() != 1 {
		t.Errorf("roster should be fetched once, got %d requests", requests.Load())
	}
}

func TestCourseMatches(t *testing.T) {
	testCases := []struct {
		candidate string
		wanted    string
		expected  bool
	}{
		{"3733", "3733", true},
		{"057", "57", true},
		{"57", "057", true},
		{"123456", "456", true},
		{"456", "123456", true},
		{"1205", "05", false},
		{"21", "1", false},
		{"", "57", false},
		{"57", "", false},
	}

	for _, testCase := range testCases {
		if got := courseMatches(testCase.candidate, testCase.wanted); got != testCase.expected {
			t.Errorf("courseMatches(%q, %q) = %v, expected %v",
				testCase.candidate, testCase.wanted, got, testCase.expected)
		}
	}
}
