package models

// Entity types an answer can be scoped to
const (
	EntityMember      = "member"
	EntityCashflow    = "cashflow"
	EntityHealthIssue = "health_issue"
)

// Question question schema row; ValueType names the typed store holding its answers
type Question struct {
	ID         int64  `json:"id" db:"id"`
	ValueType  string `json:"value_type" db:"value_type"` // tinyint, int, decimal, varchar, text
	CategoryID *int64 `json:"category_id,omitempty" db:"category_id"`
	Active     bool   `json:"active" db:"active"`
}

// Answer answer row; its value lives in the typed store selected by the question's ValueType
type Answer struct {
	ID          int64  `json:"id" db:"id"`
	InterviewID int64  `json:"interview_id" db:"interview_id"`
	QuestionID  int64  `json:"question_id" db:"question_id"`
	EntityType  string `json:"entity_type,omitempty" db:"entity_type"` // "" when not scoped
	EntityID    *int64 `json:"entity_id,omitempty" db:"entity_id"`
	HistoryID   int64  `json:"history_id" db:"history_id"`
}
