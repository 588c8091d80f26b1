// Package services orchestrates the daily informe: prefilling the form,
// saving records, generating the report and serving the dashboard.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"informe/internal/cache"
	"informe/internal/config"
	"informe/internal/core"
	applog "informe/internal/log"
	"informe/internal/records"
	"informe/internal/report"

	"github.com/shopspring/decimal"
)

const (
	historyKey      = "history"
	defaultCacheTTL = 5 * time.Minute
)

// Publisher announces a saved record version to the spreadsheet mirror.
type Publisher interface {
	PublishRecordSync(ctx context.Context, dateKey string, version int64) error
}

// Options tune an InformeService. Zero values fall back to the default
// profile, America/Sao_Paulo, time.Now and no publisher.
type Options struct {
	Profile   *config.Profile
	Location  *time.Location
	Now       func() time.Time
	Publisher Publisher
	Logger    *applog.Logger
	CacheTTL  time.Duration
}

// InformeService is the use-case layer shared by the web server and the CLI.
type InformeService struct {
	repo      *records.Repository
	publisher Publisher
	header    report.Header
	cardFee   decimal.Decimal
	loc       *time.Location
	now       func() time.Time
	logger    *applog.Logger
	events    *applog.StructuredLogger

	history *cache.LRUCache[[]core.HistoryEntry]
	charts  *cache.LRUCache[[]byte]
}

// Dashboard is the filtered history with its aggregates.
type Dashboard struct {
	Window  core.Window
	Start   core.Date
	Today   core.Date
	Entries []core.HistoryEntry
	Totals  core.Totals
}

// HasData reports whether the window holds at least one record.
func (d Dashboard) HasData() bool { return len(d.Entries) > 0 }

func NewInformeService(repo *records.Repository, opts Options) (*InformeService, error) {
	if repo == nil {
		return nil, errors.New("informe service: nil repository")
	}
	profile := config.DefaultProfile()
	if opts.Profile != nil {
		profile = *opts.Profile
	}
	loc := opts.Location
	if loc == nil {
		var err error
		loc, err = time.LoadLocation("America/Sao_Paulo")
		if err != nil {
			return nil, fmt.Errorf("load default location: %w", err)
		}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = applog.Discard()
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &InformeService{
		repo:      repo,
		publisher: opts.Publisher,
		header: report.Header{
			StoreName:     profile.Name,
			StoreLabel:    profile.Channels.Store,
			DeliveryLabel: profile.Channels.Delivery,
		},
		cardFee: profile.CardFeePercent,
		loc:     loc,
		now:     now,
		logger:  logger.WithComponent(applog.ComponentInforme),
		events:  applog.NewStructuredLogger(logger),
		history: cache.NewLRUCache[[]core.HistoryEntry](1, ttl),
		charts:  cache.NewLRUCache[[]byte](8, ttl),
	}, nil
}

// RegisterCaches hands the read caches to a cleanup manager.
func (s *InformeService) RegisterCaches(m *cache.Manager) {
	m.Register(s.history)
	m.Register(s.charts)
}

// CacheStats reports hit and miss counters per cache.
func (s *InformeService) CacheStats() map[string]cache.Stats {
	return map[string]cache.Stats{
		"history": s.history.Stats(),
		"chart":   s.charts.Stats(),
	}
}

// Header returns the labels printed on reports.
func (s *InformeService) Header() report.Header { return s.header }

// Today is the current calendar date in the store's time zone.
func (s *InformeService) Today() core.Date {
	return core.DateOf(s.now().In(s.loc))
}

// Metrics computes the day's figures with the store's card fee.
func (s *InformeService) Metrics(f core.DailyForm) core.DailyMetrics {
	return core.ComputeMetrics(f, s.cardFee)
}

// FormFor returns the stored form of date. When the day has no record, it
// returns an empty form carrying over the previous day's closing balances
// and found is false.
func (s *InformeService) FormFor(ctx context.Context, date core.Date) (form core.DailyForm, found bool, err error) {
	form, found, err = s.repo.Load(ctx, date)
	if err != nil || found {
		return form, found, err
	}
	prev, ok, err := s.repo.Load(ctx, date.AddDays(-1))
	if err != nil {
		// a broken previous record must not block today's form
		s.logger.WarnContext(ctx, "Previous record unreadable, starting empty",
			applog.FieldDate, date.AddDays(-1).Key(),
			applog.FieldError, err)
		return core.DailyForm{}, false, nil
	}
	if !ok {
		return core.DailyForm{}, false, nil
	}
	return prev.CarryOver(), false, nil
}

// FormForToday is FormFor(Today()).
func (s *InformeService) FormForToday(ctx context.Context) (core.DailyForm, bool, error) {
	return s.FormFor(ctx, s.Today())
}

// SaveForm persists the form for date and returns the stored version.
// Saving never validates: partial input is kept as typed. A failed sync
// publish is logged and does not fail the save.
func (s *InformeService) SaveForm(ctx context.Context, date core.Date, form core.DailyForm) (int64, error) {
	if err := date.Validate(); err != nil {
		return 0, fmt.Errorf("%w: %v", core.ErrInvalidDate, err)
	}
	if date.After(s.Today()) {
		return 0, fmt.Errorf("%w: %s", core.ErrFutureDate, date.Key())
	}
	version, err := s.repo.Save(ctx, date, form)
	if err != nil {
		return 0, fmt.Errorf("save record: %w", err)
	}
	s.invalidate()

	total := s.Metrics(form).Total
	s.events.LogRecordSaved(ctx, date.Key(), version, total.Cents)

	if version > 0 && s.publisher != nil {
		if err := s.publisher.PublishRecordSync(ctx, date.Key(), version); err != nil {
			s.events.LogError(ctx, "Failed to publish sync message", err,
				applog.ComponentAMQP, applog.OpPublish,
				applog.NewFields().WithRecord(date.Key(), version, total.Cents))
		}
	}
	return version, nil
}

func (s *InformeService) invalidate() {
	s.history.Clear()
	s.charts.Clear()
}

// GenerateReport validates the day's form and renders the text report.
func (s *InformeService) GenerateReport(ctx context.Context, date core.Date) (string, error) {
	form, _, err := s.FormFor(ctx, date)
	if err != nil {
		return "", err
	}
	if err := form.Validate(); err != nil {
		return "", err
	}
	return report.Text(s.header, date, form, s.Metrics(form)), nil
}

// ReportImage renders the day's report as a PNG card.
func (s *InformeService) ReportImage(ctx context.Context, date core.Date) ([]byte, error) {
	text, err := s.GenerateReport(ctx, date)
	if err != nil {
		return nil, err
	}
	b, err := report.ImagePNG(text)
	if err != nil {
		return nil, fmt.Errorf("render report image: %w", err)
	}
	return b, nil
}

// History returns every stored day, oldest first. The result is cached
// until the next save or TTL expiry.
func (s *InformeService) History(ctx context.Context) ([]core.HistoryEntry, error) {
	if entries, ok := s.history.Get(historyKey); ok {
		return entries, nil
	}
	entries, err := s.repo.History(ctx)
	if err != nil {
		return nil, err
	}
	s.history.Set(historyKey, entries)
	return entries, nil
}

// Dashboard filters the history to the window ending today.
func (s *InformeService) Dashboard(ctx context.Context, w core.Window) (Dashboard, error) {
	entries, err := s.History(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	today := s.Today()
	filtered := core.FilterWindow(entries, w, today)
	return Dashboard{
		Window:  w,
		Start:   w.Start(today),
		Today:   today,
		Entries: filtered,
		Totals:  core.Summarize(filtered),
	}, nil
}

// DashboardChart renders the window as a line chart PNG. It returns
// report.ErrNoHistory when the window is empty.
func (s *InformeService) DashboardChart(ctx context.Context, w core.Window) ([]byte, error) {
	key := string(w) + ":" + s.Today().Key()
	if b, ok := s.charts.Get(key); ok {
		return b, nil
	}
	d, err := s.Dashboard(ctx, w)
	if err != nil {
		return nil, err
	}
	b, err := report.ChartPNG(d.Entries)
	if err != nil {
		return nil, err
	}
	s.charts.Set(key, b)
	return b, nil
}

// Ping checks the backing store when it supports it.
func (s *InformeService) Ping(ctx context.Context) error {
	if p, ok := s.repo.Store().(records.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}
