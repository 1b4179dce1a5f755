package transportapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/pool"
	"golang.org/x/sync/singleflight"

	"github.com/vesselsim/vesselsim/pkg/cachestore"
	"github.com/vesselsim/vesselsim/pkg/vdm"
)

const (
	DefaultBaseURL       = "https://transport.opendata.ch"
	DefaultRetryInterval = 500 * time.Millisecond
	DefaultStaggerDelay  = 150 * time.Millisecond

	stationboardLimit = 100
)

var (
	// ErrRateLimited means the upstream returned 429 and no stale
	// response was available to fall back on.
	ErrRateLimited = errors.New("schedule source rate limited")

	// ErrFetchFailed means the upstream could not be reached or returned
	// an unusable response after retries.
	ErrFetchFailed = errors.New("schedule fetch failed")
)

// Client fetches stationboards from the schedule source, keeping a TTL
// cache of parsed entries and a last-good copy per station for rate limit
// fallback. Concurrent requests for the same station coalesce into one
// upstream call.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client

	// Cache holds parsed schedule entries per station/date. Entries with
	// zero results are deliberately never stored.
	Cache cachestore.Cache[[]vdm.ScheduleEntry]

	// StaggerDelay spaces out the start of per-station requests in
	// FetchAllStations to stay under the upstream rate limit.
	StaggerDelay  time.Duration
	RetryInterval time.Duration

	inflight singleflight.Group

	lastGoodMutex sync.Mutex
	lastGood      map[string][]vdm.ScheduleEntry
}

func NewClient(scheduleCache cachestore.Cache[[]vdm.ScheduleEntry]) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		Cache:         scheduleCache,
		StaggerDelay:  DefaultStaggerDelay,
		RetryInterval: DefaultRetryInterval,
		lastGood:      map[string][]vdm.ScheduleEntry{},
	}
}

func scheduleKey(station string, date string, fromTime string) string {
	return fmt.Sprintf("%s|%s|%s", station, date, fromTime)
}

// FetchStationSchedule returns the scheduled ship workings departing from
// station on date at or after fromTime. force bypasses both the cache and
// request coalescing.
func (c *Client) FetchStationSchedule(ctx context.Context, station string, date string, fromTime string, force bool) ([]vdm.ScheduleEntry, error) {
	key := scheduleKey(station, date, fromTime)

	if force {
		return c.fetchAndStore(ctx, key, station, date, fromTime)
	}

	if entries, ok := c.Cache.Get(ctx, key); ok {
		return entries, nil
	}

	result, err, _ := c.inflight.Do(key, func() (interface{}, error) {
		return c.fetchAndStore(ctx, key, station, date, fromTime)
	})
	if err != nil {
		return nil, err
	}

	return result.([]vdm.ScheduleEntry), nil
}

func (c *Client) fetchAndStore(ctx context.Context, key string, station string, date string, fromTime string) ([]vdm.ScheduleEntry, error) {
	entries, err := c.fetchWithRetry(ctx, station, date, fromTime)

	if errors.Is(err, ErrRateLimited) {
		if stale, ok := c.lastGoodValue(key); ok {
			log.Warn().Str("station", station).Msg("Rate limited, serving last good schedule")
			return stale, nil
		}
		return nil, err
	}

	if err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		log.Debug().Str("station", station).Msg("No ship departures on stationboard, not caching")
		return entries, nil
	}

	c.Cache.Set(ctx, key, entries)
	c.setLastGood(key, entries)

	return entries, nil
}

func (c *Client) fetchWithRetry(ctx context.Context, station string, date string, fromTime string) ([]vdm.ScheduleEntry, error) {
	var entries []vdm.ScheduleEntry

	operation := func() error {
		fetched, err := c.fetchOnce(ctx, station, date, fromTime)
		if errors.Is(err, ErrRateLimited) {
			return backoff.Permanent(err)
		}
		if err != nil {
			return err
		}

		entries = fetched
		return nil
	}

	retryPolicy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(c.RetryInterval), 2), ctx)

	err := backoff.Retry(operation, retryPolicy)
	if err != nil {
		if errors.Is(err, ErrRateLimited) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: station %s: %s", ErrFetchFailed, station, err)
	}

	return entries, nil
}

func (c *Client) fetchOnce(ctx context.Context, station string, date string, fromTime string) ([]vdm.ScheduleEntry, error) {
	requestURL := fmt.Sprintf("%s/v1/stationboard", c.BaseURL)

	params := url.Values{}
	params.Set("station", station)
	params.Set("limit", fmt.Sprint(stationboardLimit))
	params.Set("type", "departure")
	params.Set("show_passlist", "1")
	params.Add("transportations[]", "ship")
	if date != "" {
		params.Set("date", date)
	}
	if fromTime != "" {
		params.Set("time", fromTime)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s?%s", requestURL, params.Encode()), nil)
	if err != nil {
		return nil, err
	}

	response, err := c.HTTPClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stationboard returned status %d", response.StatusCode)
	}

	var board stationboardResponse
	if err := json.NewDecoder(response.Body).Decode(&board); err != nil {
		return nil, err
	}

	entries := []vdm.ScheduleEntry{}
	for _, wireEntry := range board.Stationboard {
		entries = append(entries, wireEntry.ToScheduleEntry(station))
	}

	return entries, nil
}

func (c *Client) lastGoodValue(key string) ([]vdm.ScheduleEntry, bool) {
	c.lastGoodMutex.Lock()
	defer c.lastGoodMutex.Unlock()

	entries, ok := c.lastGood[key]
	return entries, ok
}

func (c *Client) setLastGood(key string, entries []vdm.ScheduleEntry) {
	c.lastGoodMutex.Lock()
	defer c.lastGoodMutex.Unlock()

	c.lastGood[key] = entries
}

type stationSchedule struct {
	Station string
	Entries []vdm.ScheduleEntry
	Err     error
}

// FetchAllStations fetches schedules for every station concurrently,
// staggering request starts. Stations that fail end up with an empty list
// so one broken stationboard never takes down a whole reload. The returned
// error is non-nil only when every single station failed.
func (c *Client) FetchAllStations(ctx context.Context, stations []string, date string, fromTime string, force bool) (map[string][]vdm.ScheduleEntry, error) {
	fetchPool := pool.NewWithResults[stationSchedule]()

	for index, station := range stations {
		fetchPool.Go(func() stationSchedule {
			if c.StaggerDelay > 0 {
				time.Sleep(time.Duration(index) * c.StaggerDelay)
			}

			entries, err := c.FetchStationSchedule(ctx, station, date, fromTime, force)
			if err != nil {
				log.Warn().Err(err).Str("station", station).Msg("Failed to fetch stationboard")
				return stationSchedule{Station: station, Entries: []vdm.ScheduleEntry{}, Err: err}
			}

			return stationSchedule{Station: station, Entries: entries}
		})
	}

	results := fetchPool.Wait()

	schedules := map[string][]vdm.ScheduleEntry{}
	failures := 0
	for _, result := range results {
		schedules[result.Station] = result.Entries
		if result.Err != nil {
			failures += 1
		}
	}

	if len(stations) > 0 && failures == len(stations) {
		return schedules, fmt.Errorf("%w: all %d stations failed", ErrFetchFailed, len(stations))
	}

	return schedules, nil
}
