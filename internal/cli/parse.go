package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/markusmobius/go-dateparser"

	"github.com/sadopc/timetrax/internal/store"
)

var errItemNotFound = errors.New("no such work item")

// parseDate accepts YYYY-MM-DD or natural language ("yesterday",
// "last friday", "3 days ago") relative to now.
func parseDate(input string, now time.Time) (civil.Date, error) {
	input = strings.TrimSpace(input)
	if d, err := civil.ParseDate(input); err == nil {
		return d, nil
	}
	if input == "" || strings.EqualFold(input, "today") {
		return civil.DateOf(now), nil
	}

	cfg := &dateparser.Configuration{
		CurrentTime: now,
	}
	result, err := dateparser.Parse(cfg, input)
	if err != nil {
		return civil.Date{}, fmt.Errorf("invalid date %q: %w", input, err)
	}
	return civil.DateOf(result.Time.In(now.Location())), nil
}

// parseDuration accepts Go durations ("7h30m", "-2h") or decimal hours ("7.5").
func parseDuration(input string) (time.Duration, error) {
	input = strings.TrimSpace(input)
	if d, err := time.ParseDuration(input); err == nil {
		return d.Round(time.Second), nil
	}
	hours, err := strconv.ParseFloat(input, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q: use 7h30m or decimal hours", input)
	}
	return time.Duration(hours * float64(time.Hour)).Round(time.Second), nil
}

// resolveItem finds a work item by numeric id or by name. An exact name
// match wins over a case-insensitive one.
func resolveItem(s *store.Store, ref string) (store.WorkItem, error) {
	ref = strings.TrimSpace(ref)
	items, err := s.WorkItems()
	if err != nil {
		return store.WorkItem{}, err
	}

	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		for _, it := range items {
			if it.ID == id {
				return it, nil
			}
		}
	}
	for _, it := range items {
		if it.Name == ref {
			return it, nil
		}
	}
	for _, it := range items {
		if strings.EqualFold(it.Name, ref) {
			return it, nil
		}
	}
	return store.WorkItem{}, fmt.Errorf("%w: %q", errItemNotFound, ref)
}

// itemNames maps ids to names for every work item, hidden ones included.
func itemNames(s *store.Store) (map[int64]string, error) {
	items, err := s.WorkItems()
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(items))
	for _, it := range items {
		names[it.ID] = it.Name
	}
	return names, nil
}
