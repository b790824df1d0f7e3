package domain

import (
	"context"
	"time"

	"github.com/google/uuid"

	shared "github.com/felixgeelhaar/taskbrief/internal/shared/domain"
)

// Generator produces text for a prompt. Implementations make exactly one
// request per call and never retry.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Summary is the outcome of one summarization run.
type Summary struct {
	ID          uuid.UUID `json:"id"`
	Text        string    `json:"text"`
	Prompt      string    `json:"prompt"`
	TaskCount   int       `json:"task_count"`
	GeneratedAt time.Time `json:"generated_at"`
}

const (
	AggregateType = "Summary"

	RoutingKeyGenerated = "summaries.summary.generated"
)

// SummaryGenerated is recorded after a summary is returned to its owner.
// The generated text is not part of the event.
type SummaryGenerated struct {
	shared.BaseEvent
	TaskCount  int `json:"task_count"`
	PromptSize int `json:"prompt_size"`
	TextSize   int `json:"text_size"`
}

func NewSummaryGenerated(s Summary) *SummaryGenerated {
	return &SummaryGenerated{
		BaseEvent:  shared.NewBaseEvent(s.ID, AggregateType, RoutingKeyGenerated),
		TaskCount:  s.TaskCount,
		PromptSize: len(s.Prompt),
		TextSize:   len(s.Text),
	}
}
