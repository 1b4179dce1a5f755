package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/vesselsim/vesselsim/pkg/cachestore"
	"github.com/vesselsim/vesselsim/pkg/util"
)

// ErrUnresolved means no vessel deployment matched the course number on
// the requested date or its neighbours.
var ErrUnresolved = errors.New("vessel identity unresolved")

// RouteDeployment assigns a ship to a course number for one day.
type RouteDeployment struct {
	ShipName     string `json:"shipName"`
	CourseNumber string `json:"courseNumber"`
}

// DailyDeployment is the full vessel roster for one service day.
type DailyDeployment struct {
	Date   string            `json:"date"`
	Routes []RouteDeployment `json:"routes"`
}

type deploymentsResponse struct {
	DailyDeployments []DailyDeployment `json:"dailyDeployments"`
	LastUpdated      string            `json:"lastUpdated"`
}

// Resolver maps course numbers to real ship names using a published
// deployment roster. The roster is fetched lazily and cached, so lookups
// for lakes without published rosters never hit the network twice in a row.
type Resolver struct {
	EndpointURL string
	HTTPClient  *http.Client

	// DeploymentsCache holds the raw roster. Resolved names get their own
	// short cache so repeated lookups skip the date matching.
	DeploymentsCache cachestore.Cache[[]DailyDeployment]
	NameCache        cachestore.Cache[string]

	inflight singleflight.Group
}

func NewResolver(endpointURL string, deploymentsCache cachestore.Cache[[]DailyDeployment], nameCache cachestore.Cache[string]) *Resolver {
	return &Resolver{
		EndpointURL: endpointURL,
		HTTPClient: &http.Client{
			Timeout: 20 * time.Second,
		},
		DeploymentsCache: deploymentsCache,
		NameCache:        nameCache,
	}
}

// ResolveName returns the ship name deployed on courseNumber for the given
// service date (formatted 2006-01-02). Rosters published for the adjacent
// day are accepted when the exact date has no match.
func (r *Resolver) ResolveName(ctx context.Context, courseNumber string, date string) (string, error) {
	if courseNumber == "" {
		return "", ErrUnresolved
	}

	nameKey := fmt.Sprintf("%s|%s", courseNumber, date)
	if name, ok := r.NameCache.Get(ctx, nameKey); ok {
		return name, nil
	}

	deployments, err := r.deployments(ctx)
	if err != nil {
		return "", err
	}

	name, found := matchDeployment(deployments, courseNumber, date)
	if !found {
		for _, adjacent := range adjacentDates(date) {
			if name, found = matchDeployment(deployments, courseNumber, adjacent); found {
				break
			}
		}
	}

	if !found {
		return "", fmt.Errorf("%w: course %s on %s", ErrUnresolved, courseNumber, date)
	}

	r.NameCache.Set(ctx, nameKey, name)
	return name, nil
}

func (r *Resolver) deployments(ctx context.Context) ([]DailyDeployment, error) {
	if deployments, ok := r.DeploymentsCache.Get(ctx, r.EndpointURL); ok {
		return deployments, nil
	}

	result, err, _ := r.inflight.Do(r.EndpointURL, func() (interface{}, error) {
		return r.fetchDeployments(ctx)
	})
	if err != nil {
		return nil, err
	}

	return result.([]DailyDeployment), nil
}

func (r *Resolver) fetchDeployments(ctx context.Context) ([]DailyDeployment, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, r.EndpointURL, nil)
	if err != nil {
		return nil, err
	}

	response, err := r.HTTPClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("deployments endpoint returned status %d", response.StatusCode)
	}

	var roster deploymentsResponse
	if err := json.NewDecoder(response.Body).Decode(&roster); err != nil {
		return nil, err
	}

	log.Debug().
		Int("days", len(roster.DailyDeployments)).
		Str("lastupdated", roster.LastUpdated).
		Msg("Fetched vessel deployments")

	if len(roster.DailyDeployments) > 0 {
		r.DeploymentsCache.Set(ctx, r.EndpointURL, roster.DailyDeployments)
	}

	return roster.DailyDeployments, nil
}

func matchDeployment(deployments []DailyDeployment, courseNumber string, date string) (string, bool) {
	for _, day := range deployments {
		if day.Date != date {
			continue
		}

		for _, route := range day.Routes {
			if courseMatches(route.CourseNumber, courseNumber) {
				return route.ShipName, true
			}
		}
	}

	return "", false
}

// courseMatches compares course numbers tolerantly. Rosters and
// stationboards disagree on leading zeros, and some rosters embed the
// course inside a longer operational number.
func courseMatches(candidate string, wanted string) bool {
	if candidate == "" || wanted == "" {
		return false
	}
	if candidate == wanted {
		return true
	}

	candidateClean := util.TrimLeadingZeros(candidate)
	wantedClean := util.TrimLeadingZeros(wanted)
	if candidateClean == wantedClean {
		return true
	}

	if len(candidateClean) >= 3 && len(wantedClean) >= 2 && strings.HasSuffix(candidateClean, wantedClean) {
		return true
	}
	if len(wantedClean) >= 3 && len(candidateClean) >= 2 && strings.HasSuffix(wantedClean, candidateClean) {
		return true
	}

	return false
}

func adjacentDates(date string) []string {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil
	}

	return []string{
		parsed.AddDate(0, 0, -1).Format("2006-01-02"),
		parsed.AddDate(0, 0, 1).Format("2006-01-02"),
	}
}
