package membership

import (
	"testing"
	"time"

	"diaries-qc/internal/models"

	"github.com/stretchr/testify/assert"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestIsPresent_NoHistory(t *testing.T) {
	assert.True(t, IsPresent(nil, day("2025-03-01")))
}

func TestIsPresent_ExitBoundary(t *testing.T) {
	history := []models.StatusEvent{
		{MemberID: 1, Type: models.StatusExited, EffectiveDate: day("2025-03-10")},
	}

	assert.True(t, IsPresent(history, day("2025-03-09")))
	// the exit day itself already counts as absent
	assert.False(t, IsPresent(history, day("2025-03-10")))
	assert.False(t, IsPresent(history, day("2025-04-01")))
}

func TestIsPresent_ExitTimestampOnSameDay(t *testing.T) {
	history := []models.StatusEvent{
		{Type: models.StatusExited, EffectiveDate: time.Date(2025, 3, 10, 17, 30, 0, 0, time.UTC)},
	}
	assert.False(t, IsPresent(history, time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)))
}

func TestIsPresent_JoinBoundary(t *testing.T) {
	history := []models.StatusEvent{
		{Type: models.StatusJoined, EffectiveDate: day("2025-02-01")},
	}

	assert.False(t, IsPresent(history, day("2025-01-31")))
	assert.True(t, IsPresent(history, day("2025-02-01")))
}

func TestIsPresent_EarliestJoinWins(t *testing.T) {
	history := []models.StatusEvent{
		{Type: models.StatusJoined, EffectiveDate: day("2025-05-01")},
		{Type: models.StatusJoined, EffectiveDate: day("2025-01-01")},
	}
	assert.True(t, IsPresent(history, day("2025-02-15")))
}

func TestIsPresent_DependsOnInterviewDate(t *testing.T) {
	history := []models.StatusEvent{
		{Type: models.StatusJoined, EffectiveDate: day("2024-06-01")},
		{Type: models.StatusExited, EffectiveDate: day("2025-02-20")},
	}

	assert.True(t, IsPresent(history, day("2025-02-05")))
	assert.False(t, IsPresent(history, day("2025-02-21")))
}

func TestAge(t *testing.T) {
	birth := day("2007-03-15")

	age, ok := Age(&birth, day("2025-03-14"))
	assert.True(t, ok)
	assert.Equal(t, 17, age)

	age, ok = Age(&birth, day("2025-03-16"))
	assert.True(t, ok)
	assert.Equal(t, 18, age)

	_, ok = Age(nil, day("2025-03-16"))
	assert.False(t, ok)
}

func TestIsAdult(t *testing.T) {
	birth := day("1990-01-01")
	assert.True(t, IsAdult(&birth, day("2025-01-01")))

	child := day("2015-01-01")
	assert.False(t, IsAdult(&child, day("2025-01-01")))

	assert.False(t, IsAdult(nil, day("2025-01-01")))
}
