package application

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type txMarker struct{}

// recordingUoW records the order of calls and the context each one received.
type recordingUoW struct {
	beginErr    error
	commitErr   error
	rollbackErr error

	calls []string
	txCtx context.Context
}

func (r *recordingUoW) Begin(ctx context.Context) (context.Context, error) {
	r.calls = append(r.calls, "begin")
	if r.beginErr != nil {
		return ctx, r.beginErr
	}
	r.txCtx = context.WithValue(ctx, txMarker{}, true)
	return r.txCtx, nil
}

func (r *recordingUoW) Commit(ctx context.Context) error {
	r.calls = append(r.calls, "commit")
	return r.commitErr
}

func (r *recordingUoW) Rollback(ctx context.Context) error {
	r.calls = append(r.calls, "rollback")
	return r.rollbackErr
}

func TestWithUnitOfWork(t *testing.T) {
	errSave := errors.New("save task")
	errBegin := errors.New("database locked")
	errCommit := errors.New("commit failed")

	tests := []struct {
		name      string
		uow       *recordingUoW
		fnErr     error
		wantErr   error
		wantCalls []string
		wantRan   bool
	}{
		{
			name:      "commits after fn succeeds",
			uow:       &recordingUoW{},
			wantCalls: []string{"begin", "commit"},
			wantRan:   true,
		},
		{
			name:      "rolls back and returns fn error",
			uow:       &recordingUoW{},
			fnErr:     errSave,
			wantErr:   errSave,
			wantCalls: []string{"begin", "rollback"},
			wantRan:   true,
		},
		{
			name:      "rollback failure does not hide fn error",
			uow:       &recordingUoW{rollbackErr: errors.New("conn closed")},
			fnErr:     errSave,
			wantErr:   errSave,
			wantCalls: []string{"begin", "rollback"},
			wantRan:   true,
		},
		{
			name:      "begin failure skips fn",
			uow:       &recordingUoW{beginErr: errBegin},
			wantErr:   errBegin,
			wantCalls: []string{"begin"},
		},
		{
			name:      "commit failure is returned",
			uow:       &recordingUoW{commitErr: errCommit},
			wantErr:   errCommit,
			wantCalls: []string{"begin", "commit"},
			wantRan:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ran := false
			err := WithUnitOfWork(context.Background(), tt.uow, func(ctx context.Context) error {
				ran = true
				assert.Equal(t, true, ctx.Value(txMarker{}), "fn must run on the transaction context")
				return tt.fnErr
			})

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, tt.wantRan, ran)
			assert.Equal(t, tt.wantCalls, tt.uow.calls)
		})
	}
}
