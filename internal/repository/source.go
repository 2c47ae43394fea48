package repository

import (
	"context"
	"errors"
	"sort"
	"time"

	"diaries-qc/internal/answers"
	"diaries-qc/internal/dates"
	"diaries-qc/internal/models"
)

// ErrSourceUnavailable the source data could not be acquired
var ErrSourceUnavailable = errors.New("source data unavailable")

// Query selects the data of one evaluation run
type Query struct {
	ProjectID int64
	Start     time.Time // first interview day, inclusive
	End       time.Time // last interview day, inclusive

	// HistoryStart earliest day searched for previous interviews
	HistoryStart time.Time

	TestPatterns       []string // case-insensitive substrings of excluded household codes
	ExcludedHouseholds []string // household codes excluded manually
}

// Source loads the raw tables of one run
type Source interface {
	Load(ctx context.Context, q Query) (*Dataset, error)
}

// Dataset raw rows of one run, indexed for the context builder
type Dataset struct {
	Households map[int64]models.Household

	// Interviews active interviews inside the window, ordered by start then id
	Interviews []models.Interview
	// History active interviews per household from HistoryStart to End, ordered by start then id
	History map[int64][]models.Interview

	Members       map[int64][]models.Member      // by household
	StatusHistory map[int64][]models.StatusEvent // by member

	Questions map[int64]models.Question
	Answers   []models.Answer
	Values    *answers.Values

	Cashflows          map[int64][]models.Cashflow // by interview; window and previous interviews
	CashflowTypes      map[int64]models.CashflowType
	CashflowCategories map[int64]models.CashflowCategory

	EntityItems map[int64][]models.EntityItem   // by household
	Journals    map[int64][]models.JournalEntry // by interview
}

// NewDataset empty dataset
func NewDataset() *Dataset {
	return &Dataset{
		Households:         make(map[int64]models.Household),
		History:            make(map[int64][]models.Interview),
		Members:            make(map[int64][]models.Member),
		StatusHistory:      make(map[int64][]models.StatusEvent),
		Questions:          make(map[int64]models.Question),
		Values:             answers.NewValues(),
		Cashflows:          make(map[int64][]models.Cashflow),
		CashflowTypes:      make(map[int64]models.CashflowType),
		CashflowCategories: make(map[int64]models.CashflowCategory),
		EntityItems:        make(map[int64][]models.EntityItem),
		Journals:           make(map[int64][]models.JournalEntry),
	}
}

// AddInterview records an interview header in the household history, and in the window list
// when its day lies in [start, end]. Call SortInterviews once all headers are added.
func (d *Dataset) AddInterview(iv models.Interview, start, end time.Time) {
	d.History[iv.HouseholdID] = append(d.History[iv.HouseholdID], iv)
	day := dates.Day(iv.StartedAt)
	if !day.Before(dates.Day(start)) && !day.After(dates.Day(end)) {
		d.Interviews = append(d.Interviews, iv)
	}
}

// SortInterviews orders the window list and every household history by start then id
func (d *Dataset) SortInterviews() {
	sortInterviews(d.Interviews)
	for _, h := range d.History {
		sortInterviews(h)
	}
}

func sortInterviews(list []models.Interview) {
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].StartedAt.Equal(list[j].StartedAt) {
			return list[i].StartedAt.Before(list[j].StartedAt)
		}
		return list[i].ID < list[j].ID
	})
}

// Previous most recent active interview of the same household that started before iv
func (d *Dataset) Previous(iv models.Interview) *models.Interview {
	var prev *models.Interview
	for i := range d.History[iv.HouseholdID] {
		h := d.History[iv.HouseholdID][i]
		if h.ID == iv.ID || !h.StartedAt.Before(iv.StartedAt) {
			continue
		}
		if prev == nil || h.StartedAt.After(prev.StartedAt) {
			p := h
			prev = &p
		}
	}
	return prev
}

// WindowInterviewIDs ids of the window interviews
func (d *Dataset) WindowInterviewIDs() []int64 {
	ids := make([]int64, 0, len(d.Interviews))
	for _, iv := range d.Interviews {
		ids = append(ids, iv.ID)
	}
	return ids
}

// CashflowInterviewIDs window interview ids plus the ids of their previous interviews
func (d *Dataset) CashflowInterviewIDs() []int64 {
	seen := make(map[int64]struct{}, len(d.Interviews)*2)
	ids := make([]int64, 0, len(d.Interviews)*2)
	add := func(id int64) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for _, iv := range d.Interviews {
		add(iv.ID)
		if prev := d.Previous(iv); prev != nil {
			add(prev.ID)
		}
	}
	return ids
}

// HouseholdIDs ids of the in-scope households, ascending
func (d *Dataset) HouseholdIDs() []int64 {
	ids := make([]int64, 0, len(d.Households))
	for id := range d.Households {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
