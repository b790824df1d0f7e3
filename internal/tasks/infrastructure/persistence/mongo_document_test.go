package persistence

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/felixgeelhaar/taskbrief/internal/shared/domain"
	"github.com/felixgeelhaar/taskbrief/internal/tasks/domain/task"
)

func TestTaskDocument(t *testing.T) {
	hours := 3
	original, err := task.New(domain.NewOwnerID("u1"), task.Draft{
		Title:    "Clean",
		Category: "home",
		Urgency:  "not-urgent-important",
		Hours:    &hours,
		Deadline: "2025-06-02",
		Note:     "kitchen",
	})
	require.NoError(t, err)

	t.Run("uses client field names", func(t *testing.T) {
		raw, err := bson.Marshal(toDocument(original))
		require.NoError(t, err)

		var fields bson.M
		require.NoError(t, bson.Unmarshal(raw, &fields))
		for _, key := range []string{"_id", "title", "category", "stateCategory", "hour", "deadline", "note", "userId"} {
			assert.Contains(t, fields, key)
		}
		assert.Equal(t, "u1", fields["userId"])
		assert.Equal(t, "not-urgent-important", fields["stateCategory"])
	})

	t.Run("round trip", func(t *testing.T) {
		restored, err := fromDocument(toDocument(original))
		require.NoError(t, err)
		assert.Equal(t, original.ID(), restored.ID())
		assert.Equal(t, "2025-06-02", restored.Deadline().String())
		assert.Equal(t, "3", restored.EstimatedHours().String())
	})

	t.Run("reads documents written by the mobile client", func(t *testing.T) {
		doc := taskDocument{
			ID:            uuid.NewString(),
			Title:         "Essay",
			Category:      "學習",
			StateCategory: "緊急且重要",
			Hour:          9223372036854775807,
			Deadline:      time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC),
			UserID:        "u1",
		}

		restored, err := fromDocument(doc)
		require.NoError(t, err)
		assert.Equal(t, "study", restored.Category().String())
		assert.Equal(t, "urgent-important", restored.Urgency().String())
		assert.True(t, restored.EstimatedHours().IsUnknown())
		assert.Equal(t, "2025-06-01", restored.Deadline().String())
	})

	t.Run("rejects ids that are not uuids", func(t *testing.T) {
		_, err := fromDocument(taskDocument{ID: "abc", Category: "home", StateCategory: "urgent-important"})
		assert.Error(t, err)
	})
}
