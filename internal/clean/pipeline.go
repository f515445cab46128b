package clean

import (
	"time"

	"github.com/pfrederiksen/bookclub-events/internal/bookinfo"
	"github.com/pfrederiksen/bookclub-events/internal/event"
	"github.com/pfrederiksen/bookclub-events/internal/literal"
	"github.com/pfrederiksen/bookclub-events/internal/logger"
	"github.com/pfrederiksen/bookclub-events/internal/metrics"
	"github.com/pfrederiksen/bookclub-events/internal/schedule"
)

// Options selects the optional stages and the collaborators of a run
type Options struct {
	// BookExtraction adds book_title and book_author
	BookExtraction bool
	// Tagging adds tags
	Tagging bool

	// Now supplies the year for dates that omit one. Defaults to time.Now.
	Now func() time.Time

	Metrics *metrics.Recorder
	Logger  *logger.Logger
}

// DefaultOptions enables every stage
func DefaultOptions() Options {
	return Options{BookExtraction: true, Tagging: true}
}

// Report summarizes a run
type Report struct {
	RecordsIn  int            `json:"records_in"`
	RecordsOut int            `json:"records_out"`
	Dropped    map[string]int `json:"dropped"`
	Unresolved map[string]int `json:"unresolved"`
	Rules      map[string]int `json:"rules"`
	Tags       map[string]int `json:"tags"`
}

func newReport(in int) Report {
	return Report{
		RecordsIn:  in,
		Dropped:    make(map[string]int),
		Unresolved: make(map[string]int),
		Rules:      make(map[string]int),
		Tags:       make(map[string]int),
	}
}

// runner carries the per-run state shared by the record stages
type runner struct {
	opts   Options
	log    *logger.Logger
	parser *schedule.Parser
	report *Report
}

// Run cleans a copy of in and returns it with a report. The input batch is
// not modified.
func Run(in *event.Batch, opts Options) (*event.Batch, Report) {
	b := in.Clone()
	report := newReport(b.Len())

	run := &runner{
		opts:   opts,
		log:    opts.Logger,
		parser: schedule.NewParser(opts.Now),
		report: &report,
	}
	if run.log == nil {
		run.log = logger.Default()
	}
	opts.Metrics.RecordsIn(b.Len())

	run.drop(metrics.DropBlank, Normalize(b))

	hasWhen := b.HasColumn(event.ColWhen)
	hasTitle := b.HasColumn(event.ColTitle)
	hasVenue := b.HasColumn(event.ColVenue)
	hasAddress := b.HasColumn(event.ColAddress)
	books := opts.BookExtraction && hasTitle
	tagging := opts.Tagging && hasTitle

	for _, r := range b.Records {
		if hasWhen {
			run.applySchedule(r)
		}
		if books {
			run.applyBook(r)
		}
		if tagging {
			run.applyTags(r)
		}
		if hasVenue {
			run.applyVenue(r)
		}
		if hasAddress {
			run.applyAddress(r)
		}
	}

	if hasWhen {
		for _, c := range []string{
			event.ColStartDate, event.ColEndDate,
			event.ColDayOfWeekStart, event.ColDayOfWeekEnd,
			event.ColStartISO, event.ColEndISO,
			event.ColStartTime, event.ColEndTime,
		} {
			b.AddColumn(c)
		}
	}
	if books {
		b.AddColumn(event.ColBookTitle)
		b.AddColumn(event.ColBookAuthor)
	}
	if tagging {
		b.AddColumn(event.ColTags)
	}
	if hasVenue {
		for _, c := range []string{event.ColVenueName, event.ColVenueRating, event.ColVenueReviews, event.ColVenueSearchLink} {
			b.AddColumn(c)
		}
	}
	if hasAddress {
		b.AddColumn(event.ColCityState)
	}

	missing, duplicates := Finalize(b)
	run.drop(metrics.DropMissingTitleOrLink, missing)
	run.drop(metrics.DropDuplicateLink, duplicates)

	report.RecordsOut = b.Len()
	opts.Metrics.RecordsOut(b.Len())
	return b, report
}

func (run *runner) drop(reason string, n int) {
	if n == 0 {
		return
	}
	run.report.Dropped[reason] += n
	run.opts.Metrics.Dropped(reason, n)
}

func (run *runner) unresolved(facet string, r event.Record, fields logger.Fields) {
	run.report.Unresolved[facet]++
	run.opts.Metrics.Unresolved(facet)
	if run.log.Enabled(logger.LevelDebug) {
		if fields == nil {
			fields = logger.Fields{}
		}
		fields["facet"] = facet
		fields["link"] = r.Get(event.ColLink)
		run.log.Debug("Unresolved field", fields)
	}
}

func (run *runner) applySchedule(r event.Record) {
	when := r.Get(event.ColWhen)
	s := run.parser.ParseWhen(when)

	r[event.ColStartDate] = s.StartDate
	r[event.ColEndDate] = s.EndDate
	r[event.ColDayOfWeekStart] = s.DayOfWeekStart
	r[event.ColDayOfWeekEnd] = s.DayOfWeekEnd
	r[event.ColStartISO] = s.StartISO
	r[event.ColEndISO] = s.EndISO
	r[event.ColStartTime] = s.StartTime
	r[event.ColEndTime] = s.EndTime

	if when == "" {
		return
	}
	if !s.DateResolved {
		run.unresolved(metrics.FacetDate, r, logger.Fields{"when": when})
	}
	if s.TimesResolved == 0 {
		run.unresolved(metrics.FacetTime, r, logger.Fields{"when": when})
	}
}

func (run *runner) applyBook(r event.Record) {
	m, ok := bookinfo.Extract(r.Get(event.ColTitle), r.Get(event.ColDescription))
	r[event.ColBookTitle] = m.Title
	r[event.ColBookAuthor] = m.Author
	if !ok {
		run.unresolved(metrics.FacetBook, r, nil)
		return
	}
	run.report.Rules[m.Rule]++
	run.opts.Metrics.Extraction(m.Rule)
}

func (run *runner) applyTags(r event.Record) {
	tags := bookinfo.Classify(r.Get(event.ColTitle), r.Get(event.ColDescription))
	r[event.ColTags] = literal.Repr(literal.Strings(tags))
	for _, t := range tags {
		run.report.Tags[t]++
		run.opts.Metrics.Tag(t)
	}
}

func (run *runner) applyVenue(r event.Record) {
	v, err := ExpandVenue(r.Get(event.ColVenue))
	r[event.ColVenueName] = v.Name
	r[event.ColVenueRating] = v.Rating
	r[event.ColVenueReviews] = v.Reviews
	r[event.ColVenueSearchLink] = v.SearchLink
	if err != nil {
		run.unresolved(metrics.FacetVenue, r, logger.Fields{"venue": r.Get(event.ColVenue), "reason": err.Error()})
	}
}

func (run *runner) applyAddress(r event.Record) {
	addr, city, err := SplitAddress(r.Get(event.ColAddress), r.Get(event.ColCityState))
	if err != nil {
		run.unresolved(metrics.FacetAddress, r, logger.Fields{"address": r.Get(event.ColAddress), "reason": err.Error()})
	}
	r[event.ColAddress] = addr
	r[event.ColCityState] = city
}
