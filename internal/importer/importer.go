package importer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/epeers/refsync/internal/flatfiles"
	"github.com/epeers/refsync/internal/models"
	"github.com/epeers/refsync/internal/polygon"
	"github.com/epeers/refsync/internal/services"
)

// DangerMessage is shown when a run would purge existing data
const DangerMessage = "This configuration file contains a command to purge all import data and downloaded files. Are you sure you want to do this?"

const scope = "importer"

// TransactionStore records provider calls
type TransactionStore interface {
	InsertTransaction(ctx context.Context, tx models.ApiTransaction) (int64, error)
	DeleteTransactionsForSource(ctx context.Context, source string) (int64, error)
}

// RemoteFileStore is the flat file ledger
type RemoteFileStore interface {
	flatfiles.Ledger
	DeleteRemoteFilesForSource(ctx context.Context, source string) (int64, error)
}

// SplitStore persists split events
type SplitStore interface {
	StoreSplits(ctx context.Context, splits []models.Split) error
}

// Dependencies are the collaborators an Importer calls out to
type Dependencies struct {
	API          polygon.Getter
	Transactions TransactionStore
	RemoteFiles  RemoteFileStore
	Splits       SplitStore
	Objects      flatfiles.ObjectStore
	Notifier     Notifier
}

// State is a stage of an import run
type State int

const (
	StateIdle State = iota
	StatePurging
	StateDiscoveringTickers
	StateEnrichingTickerDetails
	StateFetchingSplits
	StateFetchingDividends
	StateSyncingFlatFiles
	StateRetryingStragglers
	StateDone
)

var stateNames = [...]string{
	"Idle", "Purging", "DiscoveringTickers", "EnrichingTickerDetails",
	"FetchingSplits", "FetchingDividends", "SyncingFlatFiles", "RetryingStragglers", "Done",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Importer runs the Polygon reference data pipeline:
// purge, tickers, ticker details, splits, dividends, flat files, stragglers.
type Importer struct {
	plan      *ActionPlan
	settings  settings
	deps      Dependencies
	dryRun    bool
	processID uuid.UUID

	tickers    []string
	stragglers StragglerQueue
	retried    int
	state      State

	// Now supplies the current time for the flat file cutoff
	Now func() time.Time
}

// NewImporter validates cfg and builds an Importer
func NewImporter(cfg Configuration, deps Dependencies, dryRun bool) (*Importer, error) {
	if !strings.EqualFold(strings.TrimSpace(cfg.Source), SourceName) {
		return nil, &ConfigurationError{Field: "Source", Message: fmt.Sprintf("importer only handles source %q, got %q", SourceName, cfg.Source)}
	}

	s, err := cfg.settings()
	if err != nil {
		return nil, err
	}

	plan, err := NewActionPlan(cfg.ImportActions, s.prefixes)
	if err != nil {
		return nil, err
	}

	if deps.Notifier == nil {
		deps.Notifier = LogNotifier{}
	}

	return &Importer{
		plan:      plan,
		settings:  s,
		deps:      deps,
		dryRun:    dryRun,
		processID: uuid.New(),
		Now:       time.Now,
	}, nil
}

// Plan returns the validated action plan.
func (i *Importer) Plan() *ActionPlan { return i.plan }

// ProcessID identifies this run on every row it writes.
func (i *Importer) ProcessID() uuid.UUID { return i.processID }

// DryRun reports whether the run skips every mutation.
func (i *Importer) DryRun() bool { return i.dryRun }

// State returns the stage the run last entered.
func (i *Importer) State() State { return i.state }

// Retried returns how many stragglers the last run retried.
func (i *Importer) Retried() int { return i.retried }

// Tickers returns the codes discovered by the last run.
func (i *Importer) Tickers() []string {
	out := make([]string, len(i.tickers))
	copy(out, i.tickers)
	return out
}

// ContainsDanger reports whether running would purge data, with the
// confirmation message to show the operator.
func (i *Importer) ContainsDanger() (bool, []string) {
	if i.dryRun {
		return false, nil
	}
	if a, ok := i.plan.Find(ActionPurge); ok && purgeEnabled(a) {
		return true, []string{DangerMessage}
	}
	return false, nil
}

func purgeEnabled(a ImportAction) bool {
	return len(a.Details) == 0 || !strings.EqualFold(a.First(), "false")
}

// Run executes every configured stage in order and returns the elapsed time.
// Individual call failures are reported through the notifier and do not stop
// the run; only a purge failure or cancellation does.
func (i *Importer) Run(ctx context.Context) (time.Duration, error) {
	if i == nil || i.plan == nil {
		return 0, errors.New("importer is not configured")
	}
	start := time.Now()
	defer services.TrackTime("Importer.Run", start)

	i.tickers = nil
	i.retried = 0
	i.stragglers.Drain()

	if i.settings.downloadDir != "" && !i.dryRun {
		if err := os.MkdirAll(i.settings.downloadDir, 0o755); err != nil {
			return time.Since(start), fmt.Errorf("failed to create download directory: %w", err)
		}
	}

	stages := []struct {
		state State
		run   func(context.Context) error
	}{
		{StatePurging, i.purge},
		{StateDiscoveringTickers, i.discoverTickers},
		{StateEnrichingTickerDetails, i.enrichTickerDetails},
		{StateFetchingSplits, i.fetchSplits},
		{StateFetchingDividends, i.fetchDividends},
		{StateSyncingFlatFiles, i.syncFlatFiles},
		{StateRetryingStragglers, i.retryStragglers},
	}

	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			return time.Since(start), err
		}
		i.state = st.state
		log.WithFields(log.Fields{"state": st.state, "process_id": i.processID}).Info("import state")
		if err := st.run(ctx); err != nil {
			return time.Since(start), err
		}
	}

	i.state = StateDone
	log.WithField("process_id", i.processID).Info("import complete")
	return time.Since(start), nil
}

// announce notifies the start of an action, returning false when the run is
// dry and the action must not touch anything.
func (i *Importer) announce(a Action) bool {
	msg := string(a)
	if i.dryRun {
		msg += " (dry run)"
	}
	i.deps.Notifier.Notify(Event{Message: msg, Scope: scope})
	return !i.dryRun
}

func (i *Importer) skip(a Action, why string) {
	log.WithFields(log.Fields{"action": a, "reason": why}).Info("import action skipped")
}

// fail reports a failed call and queues it for the retry pass.
func (i *Importer) fail(ctx context.Context, s Straggler, err error) {
	if ctx.Err() != nil {
		return
	}
	log.WithFields(log.Fields{
		"category":    s.Category,
		"subcategory": s.SubCategory,
		"uri":         s.URI,
	}).Errorf("provider call failed: %v", err)
	i.deps.Notifier.Notify(Event{
		Message: fmt.Sprintf("%s %s failed: %v", s.Category, s.SubCategory, err),
		Scope:   scope,
		Err:     err,
	})
	i.stragglers.Enqueue(s)
}

// report logs and notifies a failure that is not retried.
func (i *Importer) report(msg string, err error, fields log.Fields) {
	log.WithFields(fields).Errorf("%s: %v", msg, err)
	i.deps.Notifier.Notify(Event{Message: fmt.Sprintf("%s: %v", msg, err), Scope: scope, Err: err})
}

// record stores a successful call. Storage failures are reported, not fatal.
func (i *Importer) record(ctx context.Context, category, sub, uri, body string) {
	if i.deps.Transactions == nil {
		return
	}
	pid := i.processID
	_, err := i.deps.Transactions.InsertTransaction(ctx, models.ApiTransaction{
		Source:      SourceName,
		Category:    category,
		SubCategory: sub,
		URI:         uri,
		Response:    body,
		StatusCode:  200,
		ProcessID:   &pid,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		i.report("failed to record api transaction", err, log.Fields{"category": category, "uri": uri})
	}
}

// call fetches a single uri, recording it on success and queueing it on failure.
func (i *Importer) call(ctx context.Context, uri string, a Action, sub string) (string, bool) {
	body, err := i.deps.API.GetString(ctx, uri)
	if err != nil {
		i.fail(ctx, Straggler{URI: uri, Category: string(a), SubCategory: sub}, err)
		return "", false
	}
	i.record(ctx, string(a), sub, uri, body)
	return body, true
}

// walk follows a paginated listing, handing each page to fn. A failing page is
// queued as a straggler and ends the walk.
func walk[T any](ctx context.Context, i *Importer, uri string, a Action, sub string, fn func(*polygon.Page[T])) {
	p := polygon.NewPaginator[T](i.deps.API, uri, i.settings.maxPages)
	for p.More() {
		if ctx.Err() != nil {
			return
		}
		next := p.NextURI()
		page, err := p.Next(ctx)
		if errors.Is(err, polygon.ErrPageLimit) {
			log.WithFields(log.Fields{"category": a, "uri": next}).Warn("page limit reached")
			i.deps.Notifier.Notify(Event{Message: fmt.Sprintf("%s: %v", a, err), Scope: scope, Err: err})
			return
		}
		if err != nil {
			i.fail(ctx, Straggler{URI: next, Category: string(a), SubCategory: sub, Paged: true}, err)
			return
		}
		i.record(ctx, string(a), sub, page.URI, page.Raw)
		if fn != nil {
			fn(page)
		}
	}
}

func (i *Importer) purge(ctx context.Context) error {
	a, ok := i.plan.Find(ActionPurge)
	if !ok || !purgeEnabled(a) {
		i.skip(ActionPurge, "not configured")
		return nil
	}
	if !i.announce(ActionPurge) {
		return nil
	}

	if dir := i.settings.downloadDir; dir != "" {
		for _, pattern := range []string{"*.gz", "*.csv"} {
			files, err := filepath.Glob(filepath.Join(dir, pattern))
			if err != nil {
				return fmt.Errorf("failed to list %s: %w", pattern, err)
			}
			for _, f := range files {
				if err := os.Remove(f); err != nil {
					return fmt.Errorf("failed to purge %s: %w", f, err)
				}
			}
		}
	}

	// both deletes must finish before the purge is done
	var g errgroup.Group
	g.Go(func() error {
		if i.deps.Transactions == nil {
			return nil
		}
		n, err := i.deps.Transactions.DeleteTransactionsForSource(ctx, SourceName)
		log.WithField("rows", n).Debug("purged api transactions")
		return err
	})
	g.Go(func() error {
		if i.deps.RemoteFiles == nil {
			return nil
		}
		n, err := i.deps.RemoteFiles.DeleteRemoteFilesForSource(ctx, SourceName)
		log.WithField("rows", n).Debug("purged remote files")
		return err
	})
	if err := g.Wait(); err != nil {
		i.report("purge failed", err, log.Fields{"source": SourceName})
		return fmt.Errorf("failed to purge %s: %w", SourceName, err)
	}
	return nil
}

func (i *Importer) discoverTickers(ctx context.Context) error {
	a, ok := i.plan.Find(ActionTickers)
	if !ok || strings.TrimSpace(a.First()) == "" {
		i.skip(ActionTickers, "not configured")
		return nil
	}
	if !i.announce(ActionTickers) {
		return nil
	}

	types := actionTypes(a)
	seen := make(map[string]bool)
	walk(ctx, i, polygon.TickersURI(), ActionTickers, "US", func(page *polygon.Page[polygon.Ticker]) {
		for _, t := range page.Results {
			if t.Ticker != "" && !seen[t.Ticker] && types.Matches(t.Ticker) {
				seen[t.Ticker] = true
				i.tickers = append(i.tickers, t.Ticker)
			}
		}
	})

	log.WithField("count", len(i.tickers)).Info("tickers discovered")
	return ctx.Err()
}

// actionTypes parses the ticker types named in a's details. Details that name
// no type, such as "true", select stocks.
func actionTypes(a ImportAction) TickerTypes {
	t := ParseTickerTypes(a.Details)
	if !t.Any() {
		log.WithFields(log.Fields{"action": a.Name, "details": a.Details}).Debug("no ticker types named, using stocks")
		t.Stocks = true
	}
	return t
}

func (i *Importer) enrichTickerDetails(ctx context.Context) error {
	a, ok := i.plan.Find(ActionTickerDetails)
	if !ok || len(a.Details) == 0 || a.First() == "false" {
		i.skip(ActionTickerDetails, "not configured")
		return nil
	}
	if !i.announce(ActionTickerDetails) {
		return nil
	}

	fan := Fanout[string]{Limit: i.settings.maxParallelization}
	return fan.Run(ctx, i.tickers, func(ctx context.Context, code string) {
		i.call(ctx, polygon.TickerDetailsURI(code), ActionTickerDetails, code)
	})
}

func (i *Importer) fetchSplits(ctx context.Context) error {
	a, ok := i.plan.Find(ActionSplits)
	if !ok || strings.TrimSpace(a.First()) == "" {
		i.skip(ActionSplits, "not configured")
		return nil
	}
	if !i.announce(ActionSplits) {
		return nil
	}

	store := func(page *polygon.Page[polygon.Split]) { i.storeSplits(ctx, page.Results) }

	if len(i.tickers) == 0 {
		walk(ctx, i, polygon.SplitsURI(""), ActionSplits, "", store)
		return ctx.Err()
	}

	codes := actionTypes(a).Filter(i.tickers)
	fan := Fanout[string]{Limit: i.settings.maxParallelization}
	return fan.Run(ctx, codes, func(ctx context.Context, code string) {
		walk(ctx, i, polygon.SplitsURI(code), ActionSplits, code, store)
	})
}

func (i *Importer) fetchDividends(ctx context.Context) error {
	a, ok := i.plan.Find(ActionDividends)
	if !ok || strings.TrimSpace(a.First()) == "" {
		i.skip(ActionDividends, "not configured")
		return nil
	}
	if !i.announce(ActionDividends) {
		return nil
	}

	if len(i.tickers) == 0 {
		walk[polygon.Dividend](ctx, i, polygon.DividendsURI(""), ActionDividends, "", nil)
		return ctx.Err()
	}

	codes := actionTypes(a).Filter(i.tickers)
	fan := Fanout[string]{Limit: i.settings.maxParallelization}
	return fan.Run(ctx, codes, func(ctx context.Context, code string) {
		walk[polygon.Dividend](ctx, i, polygon.DividendsURI(code), ActionDividends, code, nil)
	})
}

// storeSplits converts provider splits and upserts them.
func (i *Importer) storeSplits(ctx context.Context, results []polygon.Split) {
	if i.deps.Splits == nil || len(results) == 0 {
		return
	}
	out := make([]models.Split, 0, len(results))
	for _, r := range results {
		d, err := r.Date()
		if err != nil {
			log.WithFields(log.Fields{"code": r.Ticker, "date": r.ExecutionDate}).Warn("skipping split with bad execution date")
			continue
		}
		out = append(out, models.Split{
			Source:    SourceName,
			Code:      r.Ticker,
			SplitDate: d,
			Before:    r.SplitFrom,
			After:     r.SplitTo,
		})
	}
	if err := i.deps.Splits.StoreSplits(ctx, out); err != nil {
		i.report("failed to store splits", err, log.Fields{"count": len(out)})
	}
}

func (i *Importer) syncFlatFiles(ctx context.Context) error {
	a, ok := i.plan.Find(ActionFlatFiles)
	if !ok || len(a.Details) == 0 || i.settings.downloadDir == "" {
		i.skip(ActionFlatFiles, "no prefixes or download directory")
		return nil
	}
	if !i.announce(ActionFlatFiles) {
		return nil
	}
	if i.deps.Objects == nil || i.deps.RemoteFiles == nil {
		i.report("flat file sync unavailable", errors.New("no object store or ledger configured"), nil)
		return nil
	}

	pid := i.processID
	syncer := flatfiles.NewSyncer(i.deps.Objects, i.deps.RemoteFiles, flatfiles.Options{
		Source:      SourceName,
		Bucket:      flatfiles.DefaultBucket,
		Prefixes:    a.Details,
		Dir:         i.settings.downloadDir,
		YearsOfData: i.settings.yearsOfData,
		ProcessID:   &pid,
	})
	syncer.Now = i.Now
	syncer.OnError = func(key string, err error) {
		i.deps.Notifier.Notify(Event{Message: fmt.Sprintf("%s %s failed: %v", ActionFlatFiles, key, err), Scope: scope, Err: err})
	}

	res, err := syncer.Sync(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		i.report("flat file sync failed", err, log.Fields{"bucket": flatfiles.DefaultBucket})
		return nil
	}
	i.deps.Notifier.Notify(Event{
		Message: fmt.Sprintf("%s: %d downloaded, %d unchanged, %d failed", ActionFlatFiles, res.Downloaded, res.Skipped, res.Failed),
		Scope:   scope,
	})
	return nil
}

// retryStragglers gives every failed call one more sequential attempt.
func (i *Importer) retryStragglers(ctx context.Context) error {
	items := i.stragglers.Drain()
	if len(items) == 0 {
		return nil
	}
	i.deps.Notifier.Notify(Event{Message: fmt.Sprintf("Processing %d stragglers.", len(items)), Scope: scope})

	for _, s := range items {
		if err := ctx.Err(); err != nil {
			return err
		}
		i.retried++

		if s.Paged {
			i.retryPages(ctx, s)
			continue
		}

		body, err := i.deps.API.GetString(ctx, s.URI)
		if err != nil {
			i.report("straggler failed again", err, log.Fields{
				"category":    s.Category,
				"subcategory": s.SubCategory,
				"uri":         s.URI,
			})
			continue
		}
		i.record(ctx, s.Category, s.SubCategory, s.URI, body)
	}
	return nil
}

// retryPages refetches a failed listing page and follows next_url from there.
// A failure on any page ends the retry.
func (i *Importer) retryPages(ctx context.Context, s Straggler) {
	if s.Category == string(ActionSplits) {
		resume(ctx, i, s, func(page *polygon.Page[polygon.Split]) { i.storeSplits(ctx, page.Results) })
		return
	}
	resume[json.RawMessage](ctx, i, s, nil)
}

func resume[T any](ctx context.Context, i *Importer, s Straggler, fn func(*polygon.Page[T])) {
	p := polygon.NewPaginator[T](i.deps.API, s.URI, i.settings.maxPages)
	for p.More() {
		if ctx.Err() != nil {
			return
		}
		next := p.NextURI()
		page, err := p.Next(ctx)
		if err != nil {
			i.report("straggler failed again", err, log.Fields{
				"category":    s.Category,
				"subcategory": s.SubCategory,
				"uri":         next,
			})
			return
		}
		i.record(ctx, s.Category, s.SubCategory, page.URI, page.Raw)
		if fn != nil {
			fn(page)
		}
	}
}
