package lookup

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oshokin/alarm-chat/internal/domain/alarm"
)

// Entry is the static part of a catalog alarm; the element and timestamp
// are filled in per lookup.
type Entry struct {
	Severity           string
	Description        string
	Meaning            string
	RecommendedActions string
}

// Catalog is the simulated alarm backend. It answers from an in-memory
// table after an artificial latency.
type Catalog struct {
	// entries maps alarm numbers to their descriptions.
	entries map[string]Entry
	// latency delays every answer to mimic a network round trip.
	latency time.Duration
	// now is the clock used for record timestamps.
	now func() time.Time
	// mu protects entries.
	mu sync.RWMutex
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithLatency sets the artificial answer delay.
func WithLatency(d time.Duration) CatalogOption {
	return func(c *Catalog) {
		c.latency = d
	}
}

// WithClock overrides the clock used for record timestamps.
func WithClock(now func() time.Time) CatalogOption {
	return func(c *Catalog) {
		if now != nil {
			c.now = now
		}
	}
}

// WithEntries replaces the built-in table.
func WithEntries(entries map[string]Entry) CatalogOption {
	return func(c *Catalog) {
		c.entries = make(map[string]Entry, len(entries))
		for id, e := range entries {
			c.entries[id] = e
		}
	}
}

// timestampLayout formats record timestamps for display.
const timestampLayout = "2006-01-02 15:04:05"

// NewCatalog creates a simulated backend seeded with DefaultEntries.
func NewCatalog(opts ...CatalogOption) *Catalog {
	c := &Catalog{
		entries: DefaultEntries(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Add registers or replaces an alarm entry.
func (c *Catalog) Add(alarmID string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[alarmID] = entry
}

// Lookup implements Service.
func (c *Catalog) Lookup(ctx context.Context, alarmID, element string) (*alarm.Record, error) {
	if c.latency > 0 {
		timer := time.NewTimer(c.latency)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
		case <-timer.C:
		}
	}

	id := strings.TrimSpace(alarmID)

	c.mu.RLock()
	entry, ok := c.entries[id]
	c.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, alarmID)
	}

	return &alarm.Record{
		ID:                 id,
		Severity:           entry.Severity,
		Element:            strings.TrimSpace(element),
		Timestamp:          c.now().Format(timestampLayout),
		Description:        entry.Description,
		Meaning:            entry.Meaning,
		RecommendedActions: entry.RecommendedActions,
	}, nil
}

// DefaultEntries returns the built-in alarm table.
func DefaultEntries() map[string]Entry {
	return map[string]Entry{
		"42": {
			Severity:           "Major",
			Description:        "Fan tray failure",
			Meaning:            "One or more fans in the chassis fan tray stopped or run below the minimum speed.",
			RecommendedActions: "Check the fan tray LEDs, reseat the tray and replace it if the alarm persists.",
		},
		"101": {
			Severity:           "Critical",
			Description:        "Loss of signal",
			Meaning:            "No optical power is received on the port; the link to the neighbour is down.",
			RecommendedActions: "Verify the fibre patch, clean the connectors and check the remote transmitter.",
		},
		"102": {
			Severity:           "Minor",
			Description:        "High temperature",
			Meaning:            "A board sensor reports a temperature above the warning threshold.",
			RecommendedActions: "Check room cooling and air filters; open a ticket if the temperature keeps rising.",
		},
		"205": {
			Severity:           "Critical",
			Description:        "Power supply failure",
			Meaning:            "A power supply unit is off or out of tolerance; redundancy is lost.",
			RecommendedActions: "Check the feed breaker and the PSU LEDs, then replace the faulty unit.",
		},
		"310": {
			Severity:           "Major",
			Description:        "BGP session down",
			Meaning:            "The BGP peering with the configured neighbour left the Established state.",
			RecommendedActions: "Check reachability of the peer, recent configuration changes and the peer's logs.",
		},
	}
}
