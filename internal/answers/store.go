package answers

import (
	"diaries-qc/internal/models"
)

// EntityRef owning entity an answer is scoped to
type EntityRef struct {
	Type string
	ID   int64
}

// Member scope helper
func Member(id int64) *EntityRef { return &EntityRef{Type: models.EntityMember, ID: id} }

// Cashflow scope helper
func Cashflow(id int64) *EntityRef { return &EntityRef{Type: models.EntityCashflow, ID: id} }

// HealthIssue scope helper
func HealthIssue(id int64) *EntityRef { return &EntityRef{Type: models.EntityHealthIssue, ID: id} }

type answerKey struct {
	interviewID int64
	questionID  int64
	entityType  string
	entityID    int64
}

// Store resolves (interview, question, entity) to a typed value. Each question has one value
// kind in the schema; the answer's history id is looked up in that kind's store only.
type Store struct {
	kinds       map[int64]Kind
	values      *Values
	index       map[answerKey]models.Answer
	byInterview map[int64][]models.Answer
}

// NewStore indexes answer rows. When several answers share a key the highest answer id wins.
func NewStore(kinds map[int64]Kind, values *Values, rows []models.Answer) *Store {
	s := &Store{
		kinds:       kinds,
		values:      values,
		index:       make(map[answerKey]models.Answer, len(rows)),
		byInterview: make(map[int64][]models.Answer),
	}
	for _, a := range rows {
		k := keyOf(a.InterviewID, a.QuestionID, a.EntityType, a.EntityID)
		if prev, ok := s.index[k]; !ok || a.ID > prev.ID {
			s.index[k] = a
		}
		s.byInterview[a.InterviewID] = append(s.byInterview[a.InterviewID], a)
	}
	return s
}

func keyOf(interviewID, questionID int64, entityType string, entityID *int64) answerKey {
	k := answerKey{interviewID: interviewID, questionID: questionID}
	if entityType != "" && entityID != nil {
		k.entityType = entityType
		k.entityID = *entityID
	}
	return k
}

// Resolve returns the typed value of the answer, or false when no answer or no value row
// exists. A nil entity matches only answers that are not scoped to an entity.
func (s *Store) Resolve(interviewID, questionID int64, entity *EntityRef) (Value, bool) {
	if s == nil {
		return Value{}, false
	}
	k := answerKey{interviewID: interviewID, questionID: questionID}
	if entity != nil {
		k.entityType = entity.Type
		k.entityID = entity.ID
	}
	a, ok := s.index[k]
	if !ok {
		return Value{}, false
	}
	kind, ok := s.kinds[questionID]
	if !ok {
		return Value{}, false
	}
	return s.values.Lookup(kind, a.HistoryID)
}

// CountRows number of raw answer rows recorded for an interview
func (s *Store) CountRows(interviewID int64) int {
	if s == nil {
		return 0
	}
	return len(s.byInterview[interviewID])
}

// Interview returns a view bound to one interview
func (s *Store) Interview(interviewID int64) View {
	return View{store: s, interviewID: interviewID}
}

// View answer lookups for a single interview
type View struct {
	store       *Store
	interviewID int64
}

// Resolve see Store.Resolve
func (v View) Resolve(questionID int64, entity *EntityRef) (Value, bool) {
	return v.store.Resolve(v.interviewID, questionID, entity)
}

// Answered true when a value exists and, for text kinds, is not blank
func (v View) Answered(questionID int64, entity *EntityRef) bool {
	val, ok := v.Resolve(questionID, entity)
	return ok && !val.IsBlank()
}

// IsTrue true when the answer exists and reads as true
func (v View) IsTrue(questionID int64, entity *EntityRef) bool {
	val, ok := v.Resolve(questionID, entity)
	return ok && val.IsTrue()
}

// CountAnswered number of distinct questions in the list that are answered
func (v View) CountAnswered(questions []int64, entity *EntityRef) int {
	seen := make(map[int64]struct{}, len(questions))
	n := 0
	for _, q := range questions {
		if _, dup := seen[q]; dup {
			continue
		}
		seen[q] = struct{}{}
		if v.Answered(q, entity) {
			n++
		}
	}
	return n
}

// AnsweredAny true when at least one question in the list is answered
func (v View) AnsweredAny(questions []int64, entity *EntityRef) bool {
	for _, q := range questions {
		if v.Answered(q, entity) {
			return true
		}
	}
	return false
}

// CountEntityAnswers number of answers in the interview scoped to the entity type that resolve
// to a value
func (v View) CountEntityAnswers(entityType string) int {
	if v.store == nil {
		return 0
	}
	n := 0
	for _, a := range v.store.byInterview[v.interviewID] {
		if a.EntityType != entityType || a.EntityID == nil {
			continue
		}
		kind, ok := v.store.kinds[a.QuestionID]
		if !ok {
			continue
		}
		if _, ok := v.store.values.Lookup(kind, a.HistoryID); ok {
			n++
		}
	}
	return n
}

// RowCount number of raw answer rows in the interview
func (v View) RowCount() int {
	return v.store.CountRows(v.interviewID)
}

// KindsFromSchema maps each question id to the kind of its value store
func KindsFromSchema(questions map[int64]models.Question) map[int64]Kind {
	kinds := make(map[int64]Kind, len(questions))
	for id, q := range questions {
		if k := ParseKind(q.ValueType); k != KindUnknown {
			kinds[id] = k
		}
	}
	return kinds
}
