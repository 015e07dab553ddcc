package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/covidtrack/covid19-api/cache"
	"github.com/covidtrack/covid19-api/schema"
	"github.com/covidtrack/covid19-api/stats"
	"github.com/covidtrack/covid19-api/store"
)

const logPrefix = "pipeline"

var (
	// ErrDataUnavailable - every candidate source for every attempted
	// date was exhausted without a non-empty result.
	ErrDataUnavailable = fmt.Errorf("no data available from any source")

	// ErrUpdateInProgress - another run holds the pipeline; the trigger
	// is coalesced into it.
	ErrUpdateInProgress = fmt.Errorf("update already in progress")
)

// Source is one origin of daily case records. Sources that publish a
// rolling latest dataset may ignore the requested date.
type Source interface {
	Name() string
	Fetch(ctx context.Context, date time.Time) ([]schema.CaseRecord, error)
}

// Pipeline runs the full ingest sequence: acquire records from the
// first candidate source that yields data, aggregate them, replace the
// stored snapshot and flush the response cache. At most one run is
// active at a time; the scheduler and the admin trigger share the same
// guard.
type Pipeline struct {
	sources        []Source
	countries      []schema.CountryReference
	store          store.SnapshotStore
	cache          cache.Cache
	attemptTimeout time.Duration

	running int32
	now     func() time.Time
}

// New - pipeline over the given sources, tried in order per date
func New(sources []Source, countries []schema.CountryReference, snapshotStore store.SnapshotStore, responseCache cache.Cache, attemptTimeout time.Duration) *Pipeline {
	return &Pipeline{
		sources:        sources,
		countries:      countries,
		store:          snapshotStore,
		cache:          responseCache,
		attemptTimeout: attemptTimeout,
		now:            time.Now,
	}
}

// Run executes one pipeline run. A concurrent trigger returns
// ErrUpdateInProgress without touching any state.
func (p *Pipeline) Run(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&p.running, 0, 1) {
		return ErrUpdateInProgress
	}
	defer atomic.StoreInt32(&p.running, 0)

	records, err := p.acquire(ctx)
	if err != nil {
		return err
	}

	snapshot := stats.Aggregate(records, p.countries, p.now())

	if err := p.store.ReplaceSnapshot(snapshot); err != nil {
		log.WithFields(log.Fields{"prefix": logPrefix, "stage": "persist"}).Errorf("replace snapshot with error: %s", err)
		return err
	}

	// both cached payloads derive from the superseded snapshot
	p.cache.Flush()

	log.WithFields(log.Fields{
		"prefix":    logPrefix,
		"records":   len(records),
		"countries": len(snapshot.CountryStatistics),
	}).Info("snapshot updated")

	return nil
}

// candidate is one (date, source) pair the acquisition may attempt.
type candidate struct {
	source string
	date   time.Time
	fetch  func(ctx context.Context) ([]schema.CaseRecord, error)
}

// candidates flattens the priority order into a single list: every
// source for today, then every source for yesterday.
func (p *Pipeline) candidates() []candidate {
	today := p.now()
	dates := []time.Time{today, today.AddDate(0, 0, -1)}

	list := make([]candidate, 0, len(dates)*len(p.sources))
	for _, date := range dates {
		for _, source := range p.sources {
			date, source := date, source
			list = append(list, candidate{
				source: source.Name(),
				date:   date,
				fetch: func(ctx context.Context) ([]schema.CaseRecord, error) {
					fetchCtx, cancel := context.WithTimeout(ctx, p.attemptTimeout)
					defer cancel()
					return source.Fetch(fetchCtx, date)
				},
			})
		}
	}
	return list
}

// acquire returns the result of the first candidate yielding a
// non-empty record set. A failed or empty candidate is logged and the
// next one is tried; exhausting the list is ErrDataUnavailable.
func (p *Pipeline) acquire(ctx context.Context) ([]schema.CaseRecord, error) {
	for _, c := range p.candidates() {
		records, err := c.fetch(ctx)
		if err != nil {
			log.WithFields(log.Fields{
				"prefix": logPrefix,
				"source": c.source,
				"date":   c.date.Format("01-02-2006"),
				"stage":  "fetch",
			}).Warnf("candidate failed: %s", err)
			continue
		}
		if len(records) == 0 {
			log.WithFields(log.Fields{
				"prefix": logPrefix,
				"source": c.source,
				"date":   c.date.Format("01-02-2006"),
			}).Info("candidate returned no records")
			continue
		}

		log.WithFields(log.Fields{
			"prefix":  logPrefix,
			"source":  c.source,
			"date":    c.date.Format("01-02-2006"),
			"records": len(records),
		}).Debug("candidate succeeded")
		return records, nil
	}

	return nil, ErrDataUnavailable
}
