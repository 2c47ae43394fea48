// Package evaluator runs the rule catalog over interview contexts. Rules are independent pure
// functions; interviews are evaluated in parallel and results keep the input order.
package evaluator

import (
	"context"
	"fmt"
	"strings"

	"diaries-qc/internal/builder"
	"diaries-qc/internal/config"
	"diaries-qc/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// CompletionDetailSeparator joins several findings of one completion check
const CompletionDetailSeparator = "; "

// Result rule outcomes of one interview
type Result struct {
	Context *builder.InterviewContext
	Checks  []models.CheckResult // one per completion rule, catalog order
	Issues  []models.Issue       // quality findings, catalog order
}

// Evaluator applies the catalog to interview contexts
type Evaluator struct {
	ref     *config.Reference
	rules   []Rule
	workers int
	logger  *zap.Logger
}

// NewEvaluator creates an evaluator over the full catalog
func NewEvaluator(ref *config.Reference, workers int, logger *zap.Logger) *Evaluator {
	if workers < 1 {
		workers = 1
	}
	return &Evaluator{
		ref:     ref,
		rules:   Catalog(),
		workers: workers,
		logger:  logger,
	}
}

// Evaluate runs every rule against every context. Result i belongs to contexts[i].
// Only cancellation of ctx makes it fail.
func (e *Evaluator) Evaluate(ctx context.Context, contexts []*builder.InterviewContext) ([]Result, error) {
	results := make([]Result, len(contexts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, ic := range contexts {
		i, ic := i, ic
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = e.EvaluateOne(ic)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("evaluation cancelled: %w", err)
	}
	return results, nil
}

// EvaluateOne runs every rule against one interview
func (e *Evaluator) EvaluateOne(ic *builder.InterviewContext) Result {
	res := Result{Context: ic}
	for _, rule := range e.rules {
		findings := e.check(rule, ic)
		switch rule.Shape {
		case ShapeCompletion:
			res.Checks = append(res.Checks, toCheck(rule, findings))
		case ShapeQuality:
			for _, f := range findings {
				res.Issues = append(res.Issues, toIssue(rule, ic, f))
			}
		}
	}
	return res
}

// check runs one rule; a panicking rule is logged and contributes no findings
func (e *Evaluator) check(rule Rule, ic *builder.InterviewContext) (findings []Finding) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("Rule failed",
				zap.String("rule", rule.Code),
				zap.Int64("interview_id", ic.Interview.ID),
				zap.Any("panic", r),
			)
			findings = nil
		}
	}()
	return rule.Check(ic, e.ref)
}

func toCheck(rule Rule, findings []Finding) models.CheckResult {
	c := models.CheckResult{Code: rule.Code}
	if len(findings) == 0 {
		return c
	}
	details := make([]string, 0, len(findings))
	for _, f := range findings {
		if f.Detail != "" {
			details = append(details, f.Detail)
		}
	}
	c.Flag = 1
	c.Detail = strings.Join(details, CompletionDetailSeparator)
	return c
}

func toIssue(rule Rule, ic *builder.InterviewContext, f Finding) models.Issue {
	issue := models.Issue{
		RuleCode:       rule.Code,
		RuleTitle:      rule.Title,
		HouseholdCode:  ic.Household.Code,
		MemberName:     f.Member,
		InterviewID:    ic.Interview.ID,
		InterviewStart: ic.Interview.StartedAt,
		RAName:         ic.Interview.RAName,
		Description:    f.Detail,
	}
	if c := f.Cashflow; c != nil {
		txDate := c.TransactionDate
		amount := c.Value
		issue.TransactionDate = &txDate
		issue.Amount = &amount
		issue.Category = c.CategoryName
		issue.CashflowType = c.TypeName
		issue.PaymentMode = c.ModeLabel
		if issue.PaymentMode == "" {
			issue.PaymentMode = c.PaymentMode
		}
		if issue.MemberName == "" {
			issue.MemberName = ic.MemberName(c.MemberID)
		}
	}
	if d := f.Diagnostics; d != nil {
		sources, uses, pct := d.Sources, d.Uses, d.ImbalancePct
		issue.Sources = &sources
		issue.Uses = &uses
		issue.ImbalancePct = &pct
	}
	return issue
}
