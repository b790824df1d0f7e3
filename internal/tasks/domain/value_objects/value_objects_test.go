package value_objects

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"work", CategoryWork},
		{"Home", CategoryHome},
		{" STUDY ", CategoryStudy},
		{"工作", CategoryWork},
		{"家庭", CategoryHome},
		{"學習", CategoryStudy},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("rejects unknown", func(t *testing.T) {
		_, err := ParseCategory("leisure")
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})

	t.Run("zero value is invalid", func(t *testing.T) {
		var c Category
		assert.False(t, c.IsValid())
		assert.Equal(t, "invalid", c.String())
	})
}

func TestCategoryLabels(t *testing.T) {
	assert.Equal(t, []Category{CategoryWork, CategoryHome, CategoryStudy}, Categories())
	assert.Equal(t, "Work", CategoryWork.Label())
	assert.Equal(t, "home", CategoryHome.String())
}

func TestParseUrgency(t *testing.T) {
	tests := []struct {
		in   string
		want Urgency
	}{
		{"urgent-important", UrgencyUrgentImportant},
		{"NOT_URGENT_IMPORTANT", UrgencyNotUrgentImportant},
		{"not-urgent-not-important", UrgencyNotUrgentNotImportant},
		{"緊急且重要", UrgencyUrgentImportant},
		{"不緊急但重要", UrgencyNotUrgentImportant},
		{"不重要也不緊急", UrgencyNotUrgentNotImportant},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseUrgency(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, got.IsValid())
		})
	}

	t.Run("urgent but unimportant is not offered", func(t *testing.T) {
		_, err := ParseUrgency("urgent-not-important")
		assert.ErrorIs(t, err, ErrInvalidUrgency)
	})

	assert.Equal(t, "Not urgent but important", UrgencyNotUrgentImportant.Label())
	assert.Len(t, Urgencies(), 3)
}

func TestEstimatedHours(t *testing.T) {
	t.Run("bounds", func(t *testing.T) {
		for _, n := range []int{1, 8, 24} {
			h, err := NewEstimatedHours(n)
			require.NoError(t, err)
			got, ok := h.Hours()
			assert.True(t, ok)
			assert.Equal(t, n, got)
		}
		for _, n := range []int{-1, 0, 25} {
			_, err := NewEstimatedHours(n)
			assert.ErrorIs(t, err, ErrInvalidHours, "hours=%d", n)
		}
	})

	t.Run("unknown sentinel", func(t *testing.T) {
		h := UnknownHours()
		assert.True(t, h.IsUnknown())
		assert.Equal(t, "unknown", h.String())
		assert.Equal(t, 0, h.Stored())
		_, ok := h.Hours()
		assert.False(t, ok)
	})

	t.Run("parse", func(t *testing.T) {
		h, err := ParseEstimatedHours("Unknown")
		require.NoError(t, err)
		assert.True(t, h.IsUnknown())

		h, err = ParseEstimatedHours("3")
		require.NoError(t, err)
		assert.Equal(t, "3", h.String())

		_, err = ParseEstimatedHours("three")
		assert.ErrorIs(t, err, ErrInvalidHours)
	})

	t.Run("restore", func(t *testing.T) {
		assert.Equal(t, 5, RestoreEstimatedHours(5).Stored())
		assert.True(t, RestoreEstimatedHours(0).IsUnknown())
		assert.True(t, RestoreEstimatedHours(9223372036854775807).IsUnknown())
	})
}

func TestDeadline(t *testing.T) {
	t.Run("parse and format", func(t *testing.T) {
		d, err := ParseDeadline("2024-05-01")
		require.NoError(t, err)
		assert.Equal(t, "2024-05-01", d.String())
		y, m, day := d.Date()
		assert.Equal(t, 2024, y)
		assert.Equal(t, time.May, m)
		assert.Equal(t, 1, day)
	})

	t.Run("rejects invalid dates", func(t *testing.T) {
		for _, s := range []string{"", "2024-02-30", "01/05/2024", "2024-5-1"} {
			_, err := ParseDeadline(s)
			assert.ErrorIs(t, err, ErrInvalidDeadline, s)
		}
		_, err := NewDeadline(2023, time.February, 29)
		assert.ErrorIs(t, err, ErrInvalidDeadline)
	})

	t.Run("date of a zoned time", func(t *testing.T) {
		loc := time.FixedZone("UTC+8", 8*60*60)
		d := DeadlineOn(time.Date(2024, 5, 1, 23, 30, 0, 0, loc))
		assert.Equal(t, "2024-05-01", d.String())
	})

	t.Run("ordering", func(t *testing.T) {
		a, _ := ParseDeadline("2024-05-01")
		b, _ := ParseDeadline("2024-05-02")
		assert.True(t, a.Before(b))
		assert.False(t, a.Equal(b))
	})
}
