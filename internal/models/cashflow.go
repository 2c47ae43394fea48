package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Direction money flow direction of a cashflow type
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Cashflow transaction recorded during an interview (cashflows table)
type Cashflow struct {
	ID               int64           `json:"id" db:"id"`
	InterviewID      int64           `json:"interview_id" db:"interview_id"`
	HouseholdID      int64           `json:"household_id" db:"household_id"`
	MemberID         *int64          `json:"member_id,omitempty" db:"member_id"`
	DeviceID         *int64          `json:"device_id,omitempty" db:"device_id"` // financial device entity item
	TypeID           int64           `json:"cashflow_type_id" db:"cashflow_type_id"`
	PaymentMode      string          `json:"payment_mode" db:"payment_mode"` // numeric code stored as text
	Value            decimal.Decimal `json:"value" db:"value"`
	TransactionDate  time.Time       `json:"transaction_date" db:"transaction_date"`
	LinkedCashflowID *int64          `json:"linked_cashflow_id,omitempty" db:"linked_cashflow_id"`
}

// CashflowType cashflow_types reference row
type CashflowType struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	CategoryID   *int64    `json:"category_id,omitempty" db:"category_id"`
	Direction    Direction `json:"direction" db:"direction"`
	IsBalance    bool      `json:"is_balance" db:"is_balance"`
	IsCashOnHand bool      `json:"is_cash_on_hand" db:"is_cash_on_hand"`
}

// CashflowCategory cashflow_categories reference row
type CashflowCategory struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
