package evaluator

import (
	"fmt"

	"diaries-qc/internal/answers"
	"diaries-qc/internal/builder"
	"diaries-qc/internal/config"
	"diaries-qc/internal/dates"
	"diaries-qc/internal/models"
)

func onHealthIssue(ic *builder.InterviewContext, hi models.EntityItem, detail string) Finding {
	return Finding{Member: ic.MemberName(hi.MemberID), Detail: fmt.Sprintf("%s: %s", hi.Name, detail)}
}

func checkMedicineBought(ic *builder.InterviewContext, ref *config.Reference) []Finding {
	for _, c := range ic.Cashflows {
		if c.IsHealth && c.IsOutflow() {
			return nil
		}
	}
	var findings []Finding
	for _, hi := range ic.OpenHealthIssues {
		if ic.Answers.IsTrue(ref.Questions.MedicineBought, answers.HealthIssue(hi.ID)) {
			findings = append(findings, onHealthIssue(ic, hi, "medicine purchase reported but no health expense recorded"))
		}
	}
	return findings
}

func checkMedicineName(ic *builder.InterviewContext, ref *config.Reference) []Finding {
	q := ref.Questions
	var findings []Finding
	for _, hi := range ic.OpenHealthIssues {
		scope := answers.HealthIssue(hi.ID)
		if ic.Answers.IsTrue(q.MedicineUsed, scope) && !ic.Answers.Answered(q.MedicineName, scope) {
			findings = append(findings, onHealthIssue(ic, hi, "medicine use reported but medicine name missing"))
		}
	}
	return findings
}

func visitForms(ref *config.Reference) []int64 {
	forms := make([]int64, 0, len(ref.Questions.StandardVisitForm)+len(ref.Questions.ChronicVisitForm))
	forms = append(forms, ref.Questions.StandardVisitForm...)
	return append(forms, ref.Questions.ChronicVisitForm...)
}

func checkProviderVisitForm(ic *builder.InterviewContext, ref *config.Reference) []Finding {
	forms := visitForms(ref)
	var findings []Finding
	for _, m := range ic.Members {
		scope := answers.Member(m.ID)
		if ic.Answers.IsTrue(ref.Questions.ProviderVisited, scope) && !ic.Answers.AnsweredAny(forms, scope) {
			findings = append(findings, Finding{Member: m.Name, Detail: "Provider visit reported but no visit form completed"})
		}
	}
	return findings
}

func checkVisitFormIssue(ic *builder.InterviewContext, ref *config.Reference) []Finding {
	forms := visitForms(ref)
	var findings []Finding
	for _, m := range ic.Members {
		scope := answers.Member(m.ID)
		if ic.Answers.AnsweredAny(forms, scope) && !ic.Answers.Answered(ref.Questions.VisitHealthIssue, scope) {
			findings = append(findings, Finding{Member: m.Name, Detail: "Visit form completed but no health issue selected"})
		}
	}
	return findings
}

func checkPregnancyEnded(ic *builder.InterviewContext, ref *config.Reference) []Finding {
	var findings []Finding
	for _, hi := range ic.OpenHealthIssues {
		if hi.IsOpen() && ic.Answers.IsTrue(ref.Questions.PregnancyEnded, answers.HealthIssue(hi.ID)) {
			findings = append(findings, onHealthIssue(ic, hi, "pregnancy reported ended but the issue has no close date"))
		}
	}
	return findings
}

func pregnancies(items []models.EntityItem, ref *config.Reference) []models.EntityItem {
	var list []models.EntityItem
	for _, hi := range items {
		if ref.Matches(config.GroupPregnancy, hi.Name) {
			list = append(list, hi)
		}
	}
	return list
}

// checkDuplicatePregnancy flags pairs of pregnancies of one member opened close together while
// at least one of them was open on the interview day
func checkDuplicatePregnancy(ic *builder.InterviewContext, ref *config.Reference) []Finding {
	list := pregnancies(ic.HealthIssues, ref)
	var findings []Finding
	for i := 0; i < len(list); i++ {
		for j := i + 1; j < len(list); j++ {
			a, b := list[i], list[j]
			if a.MemberID == nil || b.MemberID == nil || *a.MemberID != *b.MemberID {
				continue
			}
			if !a.OpenOn(ic.Date) && !b.OpenOn(ic.Date) {
				continue
			}
			gap := dates.DaysBetween(a.OpenDate, b.OpenDate)
			if gap < 0 {
				gap = -gap
			}
			if gap > ref.Thresholds.PregnancyDuplicateDays {
				continue
			}
			findings = append(findings, Finding{
				Member: ic.MemberName(a.MemberID),
				Detail: fmt.Sprintf("Pregnancies opened %d days apart (%s, %s)",
					gap, dates.Format(a.OpenDate), dates.Format(b.OpenDate)),
			})
		}
	}
	return findings
}

func checkDormantPregnancy(ic *builder.InterviewContext, ref *config.Reference) []Finding {
	var findings []Finding
	for _, hi := range pregnancies(ic.OpenHealthIssues, ref) {
		if hi.Dormant {
			findings = append(findings, onHealthIssue(ic, hi, "pregnancy marked dormant"))
		}
	}
	return findings
}
