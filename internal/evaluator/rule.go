package evaluator

import (
	"diaries-qc/internal/builder"
	"diaries-qc/internal/config"
)

// Shape report a rule contributes to
type Shape int

const (
	// ShapeCompletion one 0/1 flag per interview on the scorecard
	ShapeCompletion Shape = iota
	// ShapeQuality zero or more rows on the issue list
	ShapeQuality
)

func (s Shape) String() string {
	if s == ShapeCompletion {
		return "completion"
	}
	return "quality"
}

// Diagnostics numeric detail of an imbalance finding
type Diagnostics struct {
	Sources      float64
	Uses         float64
	ImbalancePct float64
}

// Finding one rule hit
type Finding struct {
	Detail      string
	Member      string                    // member the finding is about, if any
	Cashflow    *builder.EnrichedCashflow // transaction the finding is about, if any
	Diagnostics *Diagnostics
}

// CheckFunc evaluates one rule against an interview. It must not modify the context.
type CheckFunc func(ic *builder.InterviewContext, ref *config.Reference) []Finding

// Rule catalog entry
type Rule struct {
	Code  string
	Title string
	Shape Shape
	Check CheckFunc
}

// Completion check codes, in scorecard column order
const (
	CheckGoingsOn     = "goings_on"
	CheckWellbeing    = "wellbeing"
	CheckConsumption  = "consumption"
	CheckMajorEvents  = "major_events"
	CheckChanges      = "changes"
	CheckHealthUpdate = "health_update"
	CheckMpesaBalance = "mpesa_balance"
	CheckJournal      = "journal"
	CheckNoCashflows  = "no_cashflows"
	CheckFewCashflows = "few_cashflows"
	CheckNoFood       = "no_food"
)

// Catalog every rule, completion checks first. All rules always run.
func Catalog() []Rule {
	return []Rule{
		{CheckGoingsOn, "Goings-on", ShapeCompletion, checkGoingsOn},
		{CheckWellbeing, "Well-being", ShapeCompletion, checkWellbeing},
		{CheckConsumption, "Consumption (rural)", ShapeCompletion, checkConsumption},
		{CheckMajorEvents, "Major events", ShapeCompletion, checkMajorEvents},
		{CheckChanges, "Changes since last visit", ShapeCompletion, checkChanges},
		{CheckHealthUpdate, "Health issue update", ShapeCompletion, checkHealthUpdate},
		{CheckMpesaBalance, "M-Pesa balance", ShapeCompletion, checkMpesaBalance},
		{CheckJournal, "Journal", ShapeCompletion, checkJournal},
		{CheckNoCashflows, "No cashflows", ShapeCompletion, checkNoCashflows},
		{CheckFewCashflows, "Few cashflows", ShapeCompletion, checkFewCashflows},
		{CheckNoFood, "No food purchase", ShapeCompletion, checkNoFood},

		{"CF01", "Health expense without health issue", ShapeQuality, checkHealthExpenseWithoutIssue},
		{"CF02", "Sources and uses imbalance", ShapeQuality, checkSourcesUses},
		{"CF03", "In-kind cashflow with a value", ShapeQuality, checkInKindWithValue},
		{"CF04", "Paid on behalf with zero value", ShapeQuality, checkPaidOnBehalfZero},
		{"CF10", "Unlinked mobile money cashflow", ShapeQuality, checkUnlinkedMode(modeMobileMoney, typeMobileMoney, "M-Pesa")},
		{"CF11", "Unlinked credit cashflow", ShapeQuality, checkUnlinkedMode(modeCredit, typeCredit, "credit")},
		{"CF12", "Unlinked bank transfer", ShapeQuality, checkUnlinkedMode(modeBankTransfer, typeBank, "bank transfer")},
		{"CF14", "In-kind details missing", ShapeQuality, checkInKindDetails},
		{"CF16", "Shop credit without expenditure", ShapeQuality, checkShopCredit},
		{"CF18", "Transaction date out of range", ShapeQuality, checkTransactionDate},

		{"HI01", "Medicine bought without expense", ShapeQuality, checkMedicineBought},
		{"HI02", "Medicine used without name", ShapeQuality, checkMedicineName},
		{"HI03", "Provider visit without visit form", ShapeQuality, checkProviderVisitForm},
		{"HI04", "Visit form without health issue", ShapeQuality, checkVisitFormIssue},
		{"HI06", "Pregnancy ended but issue open", ShapeQuality, checkPregnancyEnded},
		{"HI08", "Duplicate pregnancy", ShapeQuality, checkDuplicatePregnancy},
		{"HI09", "Dormant pregnancy", ShapeQuality, checkDormantPregnancy},

		{"OT01", "Adult without cash on hand", ShapeQuality, checkCashOnHandPerAdult},
	}
}

// CompletionCodes scorecard check codes in column order
func CompletionCodes() []string {
	var codes []string
	for _, r := range Catalog() {
		if r.Shape == ShapeCompletion {
			codes = append(codes, r.Code)
		}
	}
	return codes
}
