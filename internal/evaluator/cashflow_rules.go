package evaluator

import (
	"fmt"

	"diaries-qc/internal/answers"
	"diaries-qc/internal/builder"
	"diaries-qc/internal/config"
	"diaries-qc/internal/dates"
	"diaries-qc/internal/models"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

func onCashflow(c builder.EnrichedCashflow, detail string) Finding {
	return Finding{Detail: detail, Cashflow: &c}
}

func checkHealthExpenseWithoutIssue(ic *builder.InterviewContext, _ *config.Reference) []Finding {
	if ic.Answers.CountEntityAnswers(models.EntityHealthIssue) > 0 {
		return nil
	}
	var findings []Finding
	for _, c := range ic.Cashflows {
		if c.IsHealth && c.IsOutflow() {
			findings = append(findings, onCashflow(c, "Health expense recorded but no health issue answers in this interview"))
		}
	}
	return findings
}

// checkSourcesUses reconciles sources (previous cash on hand plus inflows) against uses
// (outflows plus current cash on hand). Non-positive sources leave the ratio undefined.
func checkSourcesUses(ic *builder.InterviewContext, ref *config.Reference) []Finding {
	inflows, outflows := decimal.Zero, decimal.Zero
	for _, c := range ic.Cashflows {
		switch {
		case c.IsInflow():
			inflows = inflows.Add(c.Value)
		case c.IsOutflow():
			outflows = outflows.Add(c.Value)
		}
	}
	sources := ic.PreviousCashOnHand.Add(inflows)
	uses := outflows.Add(ic.CashOnHand())
	if !sources.IsPositive() {
		return nil
	}

	pct := sources.Sub(uses).Abs().Mul(hundred).Div(sources)
	if !pct.GreaterThan(decimal.NewFromFloat(ref.Thresholds.ImbalancePercent)) {
		return nil
	}
	diag := &Diagnostics{
		Sources:      sources.Round(2).InexactFloat64(),
		Uses:         uses.Round(2).InexactFloat64(),
		ImbalancePct: pct.Round(2).InexactFloat64(),
	}
	return []Finding{{
		Detail: fmt.Sprintf("Sources %s vs uses %s (%s%% imbalance)",
			sources.StringFixed(2), uses.StringFixed(2), pct.StringFixed(1)),
		Diagnostics: diag,
	}}
}

func checkInKindWithValue(ic *builder.InterviewContext, ref *config.Reference) []Finding {
	var findings []Finding
	for _, c := range ic.Cashflows {
		if !config.ModeIn(c.Mode, ref.Modes.InKind) || c.Value.IsZero() || c.IsCredit {
			continue
		}
		findings = append(findings, onCashflow(c, fmt.Sprintf("In-kind cashflow with a value of %s", c.Value.StringFixed(2))))
	}
	return findings
}

func checkPaidOnBehalfZero(ic *builder.InterviewContext, ref *config.Reference) []Finding {
	var findings []Finding
	for _, c := range ic.Cashflows {
		if config.ModeIn(c.Mode, ref.Modes.PaidOnBehalf) && c.Value.IsZero() {
			findings = append(findings, onCashflow(c, "Paid-on-behalf cashflow with zero value"))
		}
	}
	return findings
}

type modeGroup func(ref *config.Reference) []int

func modeMobileMoney(ref *config.Reference) []int  { return ref.Modes.MobileMoney }
func modeCredit(ref *config.Reference) []int       { return ref.Modes.Credit }
func modeBankTransfer(ref *config.Reference) []int { return ref.Modes.BankTransfer }

// typeGroup keyword classification of the cashflow's type and category labels
type typeGroup func(c builder.EnrichedCashflow) bool

func typeMobileMoney(c builder.EnrichedCashflow) bool { return c.IsMobileMoney }
func typeCredit(c builder.EnrichedCashflow) bool      { return c.IsCredit }
func typeBank(c builder.EnrichedCashflow) bool        { return c.IsBank }

// checkUnlinkedMode flags flows paid with a mode that always has a counterpart row. A row whose
// payment mode is missing or malformed falls back to the keyword class of its type labels.
func checkUnlinkedMode(group modeGroup, typed typeGroup, label string) CheckFunc {
	return func(ic *builder.InterviewContext, ref *config.Reference) []Finding {
		modes := group(ref)
		var findings []Finding
		for _, c := range ic.Cashflows {
			if c.IsBalance || c.HasLink {
				continue
			}
			if !config.ModeIn(c.Mode, modes) && (c.Mode != builder.InvalidMode || !typed(c)) {
				continue
			}
			findings = append(findings, onCashflow(c, fmt.Sprintf("Unlinked %s cashflow", label)))
		}
		return findings
	}
}

func checkInKindDetails(ic *builder.InterviewContext, ref *config.Reference) []Finding {
	q := ref.Questions
	var findings []Finding
	for _, c := range ic.Cashflows {
		if !config.ModeIn(c.Mode, ref.Modes.InKind) {
			continue
		}
		scope := answers.Cashflow(c.ID)
		hasUnit := ic.Answers.Answered(q.InKindUnit, scope)
		hasValue := ic.Answers.Answered(q.InKindValue, scope)
		switch {
		case !hasUnit && !hasValue:
			findings = append(findings, onCashflow(c, "In-kind cashflow missing unit/description and value"))
		case !hasUnit:
			findings = append(findings, onCashflow(c, "In-kind cashflow missing unit/description"))
		case !hasValue:
			findings = append(findings, onCashflow(c, "In-kind cashflow missing value"))
		}
	}
	return findings
}

// checkShopCredit flags shop credit without a linked expenditure. A link to a row outside the
// interview is accepted as is.
func checkShopCredit(ic *builder.InterviewContext, _ *config.Reference) []Finding {
	var findings []Finding
	for _, c := range ic.Cashflows {
		if !c.IsShopCredit || hasLinkedExpenditure(ic, c) {
			continue
		}
		findings = append(findings, onCashflow(c, "Shop credit with no linked expenditure"))
	}
	return findings
}

func hasLinkedExpenditure(ic *builder.InterviewContext, c builder.EnrichedCashflow) bool {
	for _, id := range c.LinkedTo {
		if other, ok := ic.Cashflow(id); ok && other.Direction == models.DirectionOut {
			return true
		}
	}
	if c.LinkedCashflowID != nil {
		_, inInterview := ic.Cashflow(*c.LinkedCashflowID)
		return !inInterview
	}
	return false
}

// checkTransactionDate flags future-dated rows, and late entries older than the catch-up window
// that also predate the previous visit
func checkTransactionDate(ic *builder.InterviewContext, ref *config.Reference) []Finding {
	prevDate, hasPrev := ic.PreviousDate()
	var findings []Finding
	for _, c := range ic.Cashflows {
		days := dates.DaysBetween(c.TransactionDate, ic.Date)
		switch {
		case days < 0:
			findings = append(findings, onCashflow(c,
				fmt.Sprintf("Transaction dated after the interview (%s)", dates.Format(c.TransactionDate))))
		case days > ref.Thresholds.LateEntryDays && (!hasPrev || dates.Day(c.TransactionDate).Before(prevDate)):
			findings = append(findings, onCashflow(c,
				fmt.Sprintf("Transaction dated %d days before the interview", days)))
		}
	}
	return findings
}

func checkCashOnHandPerAdult(ic *builder.InterviewContext, _ *config.Reference) []Finding {
	var findings []Finding
	for _, m := range ic.Adults() {
		if hasCashOnHand(ic, m.ID) {
			continue
		}
		findings = append(findings, Finding{Member: m.Name, Detail: "No cash on hand recorded for adult member"})
	}
	return findings
}

func hasCashOnHand(ic *builder.InterviewContext, memberID int64) bool {
	for _, c := range ic.Cashflows {
		if c.IsCashOnHand && c.MemberID != nil && *c.MemberID == memberID {
			return true
		}
	}
	return false
}
