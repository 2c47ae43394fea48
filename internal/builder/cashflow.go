package builder

import (
	"strconv"
	"strings"

	"diaries-qc/internal/config"
	"diaries-qc/internal/models"
)

// InvalidMode payment mode of a cashflow whose code is missing or malformed; matches no mode list
const InvalidMode = -1

// EnrichedCashflow cashflow with its resolved labels and derived classification
type EnrichedCashflow struct {
	models.Cashflow

	TypeName     string
	CategoryName string
	Direction    models.Direction
	Mode         int
	ModeLabel    string

	IsCashOnHand bool
	IsBalance    bool // balance snapshot rather than a flow

	IsHealth      bool
	IsMobileMoney bool
	IsBank        bool
	IsCredit      bool
	IsFood        bool
	IsShopCredit  bool

	// LinkedTo cashflows of the same interview linked with this one, in either direction
	LinkedTo []int64
	// HasLink set when the row carries a link or another row links to it
	HasLink bool
}

// IsInflow money flowing in; balance snapshots are not flows
func (c EnrichedCashflow) IsInflow() bool {
	return c.Direction == models.DirectionIn && !c.IsBalance && !c.IsCashOnHand
}

// IsOutflow money flowing out; balance snapshots are not flows
func (c EnrichedCashflow) IsOutflow() bool {
	return c.Direction == models.DirectionOut && !c.IsBalance && !c.IsCashOnHand
}

// ParseMode parses a payment-mode code; anything but a plain integer is InvalidMode
func ParseMode(raw string) int {
	code, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return InvalidMode
	}
	return code
}

// Enrich resolves labels and classifies one cashflow
func Enrich(cf models.Cashflow, types map[int64]models.CashflowType, categories map[int64]models.CashflowCategory, ref *config.Reference) EnrichedCashflow {
	e := EnrichedCashflow{
		Cashflow: cf,
		Mode:     ParseMode(cf.PaymentMode),
		HasLink:  cf.LinkedCashflowID != nil,
	}
	e.ModeLabel = ref.ModeLabel(e.Mode)

	t, ok := types[cf.TypeID]
	if ok {
		e.TypeName = t.Name
		e.Direction = t.Direction
		if t.CategoryID != nil {
			e.CategoryName = categories[*t.CategoryID].Name
		}
	}

	e.IsCashOnHand = t.IsCashOnHand || ref.Matches(config.GroupCashOnHand, e.TypeName)
	e.IsBalance = t.IsBalance ||
		config.ModeIn(e.Mode, ref.Modes.Balance) ||
		ref.Matches(config.GroupBalance, e.TypeName, e.CategoryName)

	e.IsHealth = ref.Matches(config.GroupHealth, e.TypeName, e.CategoryName)
	e.IsMobileMoney = ref.Matches(config.GroupMobileMoney, e.TypeName, e.CategoryName)
	e.IsBank = ref.Matches(config.GroupBank, e.TypeName, e.CategoryName)
	e.IsCredit = ref.Matches(config.GroupCredit, e.TypeName, e.CategoryName)
	e.IsFood = ref.Matches(config.GroupFood, e.TypeName, e.CategoryName)
	e.IsShopCredit = ref.Matches(config.GroupShopCredit, e.TypeName, e.CategoryName)
	return e
}

// linkCashflows fills LinkedTo and HasLink from the link ids of the interview's rows
func linkCashflows(list []EnrichedCashflow) {
	index := make(map[int64]int, len(list))
	for i := range list {
		index[list[i].ID] = i
	}
	for i := range list {
		target := list[i].LinkedCashflowID
		if target == nil {
			continue
		}
		if j, ok := index[*target]; ok && j != i {
			list[i].LinkedTo = append(list[i].LinkedTo, list[j].ID)
			list[j].LinkedTo = append(list[j].LinkedTo, list[i].ID)
			list[j].HasLink = true
		}
	}
}
