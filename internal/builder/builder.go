// Package builder assembles the per-interview context the rules evaluate: the roster as of the
// interview day, classified cashflows, health issues and devices open at the visit, the previous
// visit and the interview's answers.
package builder

import (
	"sort"

	"diaries-qc/internal/answers"
	"diaries-qc/internal/config"
	"diaries-qc/internal/dates"
	"diaries-qc/internal/membership"
	"diaries-qc/internal/models"
	"diaries-qc/internal/repository"

	"go.uber.org/zap"
)

// Builder builds interview contexts from one loaded dataset
type Builder struct {
	ds      *repository.Dataset
	ref     *config.Reference
	store   *answers.Store
	changes []int64
	logger  *zap.Logger
}

// NewBuilder indexes the dataset's answers once for all interviews
func NewBuilder(ds *repository.Dataset, ref *config.Reference, logger *zap.Logger) *Builder {
	return &Builder{
		ds:      ds,
		ref:     ref,
		store:   answers.NewStore(answers.KindsFromSchema(ds.Questions), ds.Values, ds.Answers),
		changes: categoryQuestions(ds.Questions, ref.Questions.ChangesCategoryID),
		logger:  logger,
	}
}

// categoryQuestions active questions of a category, ascending
func categoryQuestions(questions map[int64]models.Question, categoryID int64) []int64 {
	var ids []int64
	for id, q := range questions {
		if q.Active && q.CategoryID != nil && *q.CategoryID == categoryID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// BuildAll contexts for every window interview, in window order. Test and excluded households
// are skipped even when the source returned them.
func (b *Builder) BuildAll() []*InterviewContext {
	contexts := make([]*InterviewContext, 0, len(b.ds.Interviews))
	for _, iv := range b.ds.Interviews {
		hh, ok := b.ds.Households[iv.HouseholdID]
		if !ok {
			b.logger.Warn("Interview without in-scope household, skipping",
				zap.Int64("interview_id", iv.ID),
				zap.Int64("household_id", iv.HouseholdID),
			)
			continue
		}
		if b.ref.IsTestHousehold(hh.Code) || b.ref.IsExcludedHousehold(hh.Code) {
			b.logger.Debug("Excluded household, skipping interview",
				zap.Int64("interview_id", iv.ID),
				zap.String("household_code", hh.Code),
			)
			continue
		}
		contexts = append(contexts, b.Build(iv, hh))
	}
	return contexts
}

// Build assembles the context of one interview
func (b *Builder) Build(iv models.Interview, hh models.Household) *InterviewContext {
	ic := &InterviewContext{
		Interview:        iv,
		Household:        hh,
		Date:             dates.Day(iv.StartedAt),
		Answers:          b.store.Interview(iv.ID),
		Journals:         b.ds.Journals[iv.ID],
		ChangesQuestions: b.changes,
	}

	ic.Previous = b.ds.Previous(iv)
	if prevDate, ok := ic.PreviousDate(); ok {
		ic.WindowStart = prevDate
		ic.PreviousCashOnHand = cashOnHand(b.enrichAll(b.ds.Cashflows[ic.Previous.ID]))
	} else {
		ic.WindowStart = ic.Date.AddDate(0, 0, -b.ref.Thresholds.QualityWindowFallbackDays)
	}

	ic.Members = b.members(hh.ID, ic)
	ic.Cashflows = b.enrichAll(b.ds.Cashflows[iv.ID])
	linkCashflows(ic.Cashflows)
	b.entityItems(hh.ID, ic)
	return ic
}

func (b *Builder) members(householdID int64, ic *InterviewContext) []MemberContext {
	list := make([]MemberContext, 0, len(b.ds.Members[householdID]))
	for _, m := range b.ds.Members[householdID] {
		list = append(list, MemberContext{
			Member:   m,
			Present:  membership.IsPresent(b.ds.StatusHistory[m.ID], ic.Date),
			Adult:    membership.IsAdult(m.Birthdate, ic.Date),
			Excluded: b.ref.IsExcludedMember(m.ID),
		})
	}
	sort.SliceStable(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list
}

func (b *Builder) enrichAll(rows []models.Cashflow) []EnrichedCashflow {
	list := make([]EnrichedCashflow, 0, len(rows))
	for _, cf := range rows {
		list = append(list, Enrich(cf, b.ds.CashflowTypes, b.ds.CashflowCategories, b.ref))
	}
	return list
}

// entityItems splits the household's items into health issues and devices as of the interview.
// A health issue is open at the interview when it was opened by then and is either unclosed or
// closed no earlier than the window start.
func (b *Builder) entityItems(householdID int64, ic *InterviewContext) {
	for _, item := range b.ds.EntityItems[householdID] {
		if !dates.OnOrBefore(item.OpenDate, ic.Date) {
			continue
		}
		switch item.Kind {
		case models.ItemHealthIssue:
			ic.HealthIssues = append(ic.HealthIssues, item)
			if item.CloseDate == nil || !dates.Day(*item.CloseDate).Before(ic.WindowStart) {
				ic.OpenHealthIssues = append(ic.OpenHealthIssues, item)
			}
		case models.ItemFinancialDevice:
			if item.CloseDate == nil || !dates.Day(*item.CloseDate).Before(ic.Date) {
				ic.Devices = append(ic.Devices, item)
			}
		}
	}
}
