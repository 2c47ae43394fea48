package config

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed reference.yaml
var defaultReferenceYAML []byte

// Keyword groups used to classify cashflow and entity labels
const (
	GroupHealth      = "health"
	GroupMobileMoney = "mobile_money"
	GroupBank        = "bank"
	GroupCredit      = "credit"
	GroupFood        = "food"
	GroupBalance     = "balance"
	GroupCashOnHand  = "cash_on_hand"
	GroupShopCredit  = "shop_credit"
	GroupPregnancy   = "pregnancy"
)

// DefaultCleanChecks completion checks used for the RA quality score when none are configured
var DefaultCleanChecks = []string{"goings_on", "wellbeing", "no_cashflows", "few_cashflows"}

var requiredGroups = []string{
	GroupHealth, GroupMobileMoney, GroupBank, GroupCredit, GroupFood,
	GroupBalance, GroupCashOnHand, GroupShopCredit, GroupPregnancy,
}

// Reference fixed business reference data shared read-only by every rule in a run
type Reference struct {
	TestHouseholdPatterns []string `yaml:"test_household_patterns"`

	Exclusions struct {
		HouseholdCodes []string `yaml:"household_codes"`
		MemberIDs      []int64  `yaml:"member_ids"`
	} `yaml:"exclusions"`

	FewCashflowsExemptHouseholds []string `yaml:"few_cashflows_exempt_households"`
	RuralHouseholdPrefixes       []string `yaml:"rural_household_prefixes"`

	// CleanChecks completion checks an interview must pass to count as clean in the RA summary
	CleanChecks []string `yaml:"clean_checks"`

	Questions  Questions              `yaml:"questions"`
	Thresholds Thresholds             `yaml:"thresholds"`
	Modes      PaymentModes           `yaml:"payment_modes"`
	Keywords   map[string][]string    `yaml:"keywords"`

	cutover        time.Time
	excludedHH     map[string]struct{}
	excludedMember map[int64]struct{}
	fewExempt      map[string]struct{}
}

// Questions question ids per survey module
type Questions struct {
	GoingsOn                []int64 `yaml:"goings_on"`
	GoingsOnCutoverQuestion int64   `yaml:"goings_on_cutover_question"`
	GoingsOnCutoverDate     string  `yaml:"goings_on_cutover_date"`
	Wellbeing               []int64 `yaml:"wellbeing"`
	ConsumedOwnProduction   int64   `yaml:"consumed_own_production"`
	ConsumptionItems        []int64 `yaml:"consumption_items"`
	MajorEvents             []int64 `yaml:"major_events"`
	ChangesCategoryID       int64   `yaml:"changes_category_id"`
	HealthUpdate            []int64 `yaml:"health_update"`
	MedicineBought          int64   `yaml:"medicine_bought"`
	MedicineUsed            int64   `yaml:"medicine_used"`
	MedicineName            int64   `yaml:"medicine_name"`
	ProviderVisited         int64   `yaml:"provider_visited"`
	StandardVisitForm       []int64 `yaml:"standard_visit_form"`
	ChronicVisitForm        []int64 `yaml:"chronic_visit_form"`
	VisitHealthIssue        int64   `yaml:"visit_health_issue"`
	PregnancyEnded          int64   `yaml:"pregnancy_ended"`
	InKindUnit              int64   `yaml:"in_kind_unit"`
	InKindValue             int64   `yaml:"in_kind_value"`
}

// Thresholds explicit business constants
type Thresholds struct {
	GoingsOnRequiredBeforeCutover int     `yaml:"goings_on_required_before_cutover"`
	GoingsOnRequiredAfterCutover  int     `yaml:"goings_on_required_after_cutover"`
	MajorEventsRequired           int     `yaml:"major_events_required"`
	JournalMinChars               int     `yaml:"journal_min_chars"`
	FewCashflows                  int     `yaml:"few_cashflows"`
	HealthUpdateMinOpenDays       int     `yaml:"health_update_min_open_days"`
	HealthUpdateRecentCloseDays   int     `yaml:"health_update_recent_close_days"`
	ImbalancePercent              float64 `yaml:"imbalance_percent"`
	LateEntryDays                 int     `yaml:"late_entry_days"`
	PregnancyDuplicateDays        int     `yaml:"pregnancy_duplicate_days"`
	QualityWindowFallbackDays     int     `yaml:"quality_window_fallback_days"`
	OnTimeGapMinDays              int     `yaml:"on_time_gap_min_days"`
	OnTimeGapMaxDays              int     `yaml:"on_time_gap_max_days"`
}

// PaymentModes payment-mode codes by role, plus display labels
type PaymentModes struct {
	Labels       map[int]string `yaml:"labels"`
	InKind       []int          `yaml:"in_kind"`
	PaidOnBehalf []int          `yaml:"paid_on_behalf"`
	MobileMoney  []int          `yaml:"mobile_money"`
	Credit       []int          `yaml:"credit"`
	BankTransfer []int          `yaml:"bank_transfer"`
	Balance      []int          `yaml:"balance"`
}

// DefaultReference the embedded reference data
func DefaultReference() (*Reference, error) {
	return ParseReference(defaultReferenceYAML)
}

// LoadReference reads the reference file at path, or the embedded data when path is empty
func LoadReference(path string) (*Reference, error) {
	if path == "" {
		return DefaultReference()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference file: %w", err)
	}
	return ParseReference(data)
}

// ParseReference decodes and validates reference YAML
func ParseReference(data []byte) (*Reference, error) {
	ref := &Reference{}
	if err := yaml.Unmarshal(data, ref); err != nil {
		return nil, fmt.Errorf("failed to parse reference data: %w", err)
	}
	if err := ref.init(); err != nil {
		return nil, err
	}
	return ref, nil
}

func (r *Reference) init() error {
	q := r.Questions
	switch {
	case len(q.GoingsOn) == 0:
		return fmt.Errorf("reference: questions.goings_on is empty")
	case len(q.Wellbeing) == 0:
		return fmt.Errorf("reference: questions.wellbeing is empty")
	case len(q.MajorEvents) == 0:
		return fmt.Errorf("reference: questions.major_events is empty")
	case len(q.HealthUpdate) == 0:
		return fmt.Errorf("reference: questions.health_update is empty")
	}

	cutover, err := time.Parse("2006-01-02", q.GoingsOnCutoverDate)
	if err != nil {
		return fmt.Errorf("reference: invalid goings_on_cutover_date %q: %w", q.GoingsOnCutoverDate, err)
	}
	r.cutover = cutover

	t := r.Thresholds
	if t.JournalMinChars <= 0 || t.FewCashflows <= 0 || t.ImbalancePercent <= 0 ||
		t.LateEntryDays <= 0 || t.PregnancyDuplicateDays <= 0 || t.MajorEventsRequired <= 0 {
		return fmt.Errorf("reference: thresholds must be positive")
	}
	if t.GoingsOnRequiredBeforeCutover <= 0 || t.GoingsOnRequiredAfterCutover <= 0 {
		return fmt.Errorf("reference: goings-on thresholds must be positive")
	}

	for _, g := range requiredGroups {
		if len(r.Keywords[g]) == 0 {
			return fmt.Errorf("reference: keyword group %q is empty", g)
		}
	}
	for g, words := range r.Keywords {
		for i, w := range words {
			r.Keywords[g][i] = strings.ToLower(w)
		}
	}

	if len(r.CleanChecks) == 0 {
		r.CleanChecks = append([]string(nil), DefaultCleanChecks...)
	}
	for i, c := range r.CleanChecks {
		r.CleanChecks[i] = strings.ToLower(strings.TrimSpace(c))
		if r.CleanChecks[i] == "" {
			return fmt.Errorf("reference: clean_checks contains an empty check code")
		}
	}

	r.excludedHH = toSet(r.Exclusions.HouseholdCodes)
	r.fewExempt = toSet(r.FewCashflowsExemptHouseholds)
	r.excludedMember = make(map[int64]struct{}, len(r.Exclusions.MemberIDs))
	for _, id := range r.Exclusions.MemberIDs {
		r.excludedMember[id] = struct{}{}
	}
	return nil
}

func toSet(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[strings.ToUpper(strings.TrimSpace(c))] = struct{}{}
	}
	return set
}

// CutoverDate date from which the cutover goings-on question is required
func (r *Reference) CutoverDate() time.Time {
	return r.cutover
}

// IsTestHousehold true when the code contains a test pattern (case-insensitive)
func (r *Reference) IsTestHousehold(code string) bool {
	lower := strings.ToLower(code)
	for _, p := range r.TestHouseholdPatterns {
		if p != "" && strings.Contains(lower, strings.ToLower(p)) {
			return true
		}
	}
	return false
}

// IsExcludedHousehold manual household exclusion
func (r *Reference) IsExcludedHousehold(code string) bool {
	_, ok := r.excludedHH[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// IsExcludedMember manual member exclusion
func (r *Reference) IsExcludedMember(id int64) bool {
	_, ok := r.excludedMember[id]
	return ok
}

// IsFewCashflowsExempt household exempt from the few-cashflows check
func (r *Reference) IsFewCashflowsExempt(code string) bool {
	_, ok := r.fewExempt[strings.ToUpper(strings.TrimSpace(code))]
	return ok
}

// IsRuralHousehold household code starts with a rural prefix
func (r *Reference) IsRuralHousehold(code string) bool {
	upper := strings.ToUpper(code)
	for _, p := range r.RuralHouseholdPrefixes {
		if p != "" && strings.HasPrefix(upper, strings.ToUpper(p)) {
			return true
		}
	}
	return false
}

// Matches reports whether any label contains a keyword of the group (case-insensitive)
func (r *Reference) Matches(group string, labels ...string) bool {
	words := r.Keywords[group]
	for _, label := range labels {
		lower := strings.ToLower(label)
		if lower == "" {
			continue
		}
		for _, w := range words {
			if strings.Contains(lower, w) {
				return true
			}
		}
	}
	return false
}

// ModeLabel display label of a payment-mode code
func (r *Reference) ModeLabel(code int) string {
	if label, ok := r.Modes.Labels[code]; ok {
		return label
	}
	return ""
}

// ModeIn reports whether code belongs to the given mode list
func ModeIn(code int, modes []int) bool {
	for _, m := range modes {
		if m == code {
			return true
		}
	}
	return false
}
