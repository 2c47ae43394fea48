package evaluator

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"diaries-qc/internal/answers"
	"diaries-qc/internal/builder"
	"diaries-qc/internal/config"
	"diaries-qc/internal/dates"
)

func single(detail string) []Finding {
	return []Finding{{Detail: detail}}
}

func checkGoingsOn(ic *builder.InterviewContext, ref *config.Reference) []Finding {
	q := ref.Questions
	required := ref.Thresholds.GoingsOnRequiredAfterCutover
	questions := q.GoingsOn
	if ic.Date.Before(ref.CutoverDate()) {
		required = ref.Thresholds.GoingsOnRequiredBeforeCutover
		questions = without(q.GoingsOn, q.GoingsOnCutoverQuestion)
	}
	answered := ic.Answers.CountAnswered(questions, nil)
	if answered >= required {
		return nil
	}
	return single(fmt.Sprintf("Goings-on: %d of %d answered", answered, required))
}

func without(ids []int64, drop int64) []int64 {
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id != drop {
			out = append(out, id)
		}
	}
	return out
}

func checkWellbeing(ic *builder.InterviewContext, ref *config.Reference) []Finding {
	total := len(ref.Questions.Wellbeing)
	var missing []string
	for _, m := range ic.Adults() {
		answered := ic.Answers.CountAnswered(ref.Questions.Wellbeing, answers.Member(m.ID))
		if answered < total {
			missing = append(missing, fmt.Sprintf("%s (%d well-being question(s) missing)", m.Name, total-answered))
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return single("Well-being: " + strings.Join(missing, ", "))
}

func checkConsumption(ic *builder.InterviewContext, ref *config.Reference) []Finding {
	if !ref.IsRuralHousehold(ic.Household.Code) {
		return nil
	}
	q := ref.Questions
	if !ic.Answers.IsTrue(q.ConsumedOwnProduction, nil) {
		return nil
	}
	if ic.Answers.CountAnswered(q.ConsumptionItems, nil) > 0 {
		return nil
	}
	return single("Consumed own production but no consumption items recorded")
}

func checkMajorEvents(ic *builder.InterviewContext, ref *config.Reference) []Finding {
	required := ref.Thresholds.MajorEventsRequired
	answered := ic.Answers.CountAnswered(ref.Questions.MajorEvents, nil)
	if answered >= required {
		return nil
	}
	return single(fmt.Sprintf("Major events: %d missing (%d of %d answered)", required-answered, answered, required))
}

func checkChanges(ic *builder.InterviewContext, _ *config.Reference) []Finding {
	total := len(ic.ChangesQuestions)
	answered := ic.Answers.CountAnswered(ic.ChangesQuestions, nil)
	if answered >= total {
		return nil
	}
	return single(fmt.Sprintf("Changes since last visit: %d of %d answered", answered, total))
}

// checkHealthUpdate requires an update answer for every health issue that has been open long
// enough to need one: open more than the minimum days, still open or recently closed, and not
// opened and closed entirely since the previous visit.
func checkHealthUpdate(ic *builder.InterviewContext, ref *config.Reference) []Finding {
	t := ref.Thresholds
	prevDate, hasPrev := ic.PreviousDate()

	var unmet []string
	for _, hi := range ic.HealthIssues {
		if dates.DaysBetween(hi.OpenDate, ic.Date) <= t.HealthUpdateMinOpenDays {
			continue
		}
		if hi.CloseDate != nil {
			if dates.DaysBetween(*hi.CloseDate, ic.Date) > t.HealthUpdateRecentCloseDays {
				continue
			}
			if hasPrev && !dates.Day(hi.OpenDate).Before(prevDate) && dates.OnOrBefore(*hi.CloseDate, ic.Date) {
				continue
			}
		}
		if ic.Answers.AnsweredAny(ref.Questions.HealthUpdate, answers.HealthIssue(hi.ID)) {
			continue
		}
		unmet = append(unmet, issueLabel(ic, hi.Name, hi.MemberID))
	}
	if len(unmet) == 0 {
		return nil
	}
	return single("Health issues not updated: " + strings.Join(unmet, ", "))
}

func issueLabel(ic *builder.InterviewContext, name string, memberID *int64) string {
	if member := ic.MemberName(memberID); member != "" {
		return fmt.Sprintf("%s (%s)", name, member)
	}
	return name
}

func checkMpesaBalance(ic *builder.InterviewContext, ref *config.Reference) []Finding {
	var missing []string
	for _, dev := range ic.Devices {
		if !ref.Matches(config.GroupMobileMoney, dev.Subtype, dev.Name) {
			continue
		}
		transactions, balances := 0, 0
		for _, c := range ic.Cashflows {
			if c.DeviceID == nil || *c.DeviceID != dev.ID {
				continue
			}
			transactions++
			if c.IsBalance {
				balances++
			}
		}
		if transactions > 0 && balances == 0 {
			missing = append(missing, dev.Name)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return single("M-Pesa balance missing: " + strings.Join(missing, ", "))
}

func checkJournal(ic *builder.InterviewContext, ref *config.Reference) []Finding {
	if len(ic.Journals) == 0 {
		return single("No journal entries")
	}
	chars := 0
	for _, j := range ic.Journals {
		chars += utf8.RuneCountInString(j.Body)
	}
	if chars >= ref.Thresholds.JournalMinChars {
		return nil
	}
	return single(fmt.Sprintf("Journal too short (%d characters)", chars))
}

func checkNoCashflows(ic *builder.InterviewContext, _ *config.Reference) []Finding {
	if len(ic.Cashflows) > 0 {
		return nil
	}
	return single("No cashflows recorded")
}

func checkFewCashflows(ic *builder.InterviewContext, ref *config.Reference) []Finding {
	n := len(ic.Cashflows)
	if n == 0 || n >= ref.Thresholds.FewCashflows || ref.IsFewCashflowsExempt(ic.Household.Code) {
		return nil
	}
	return single(fmt.Sprintf("Only %d cashflows recorded", n))
}

func checkNoFood(ic *builder.InterviewContext, _ *config.Reference) []Finding {
	for _, c := range ic.Cashflows {
		if c.IsFood && c.IsOutflow() {
			return nil
		}
	}
	return single("No food purchase recorded")
}
