package pipeline_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/praval-labs/praval/internal/pipeline"
)

func TestPolicyDo(t *testing.T) {
	transient := fmt.Errorf("%w: storage hiccup", pipeline.ErrTransient)
	permanent := errors.New("schema violation")

	tests := []struct {
		name      string
		attempts  int
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{
			name:      "success first try",
			attempts:  3,
			failures:  0,
			wantCalls: 1,
		},
		{
			name:      "transient recovers",
			attempts:  3,
			failures:  2,
			err:       transient,
			wantCalls: 3,
		},
		{
			name:      "transient exhausted",
			attempts:  3,
			failures:  5,
			err:       transient,
			wantCalls: 3,
			wantErr:   pipeline.ErrTransient,
		},
		{
			name:      "permanent not retried",
			attempts:  3,
			failures:  5,
			err:       permanent,
			wantCalls: 1,
			wantErr:   permanent,
		},
		{
			name:      "zero attempts runs once",
			attempts:  0,
			failures:  5,
			err:       transient,
			wantCalls: 1,
			wantErr:   pipeline.ErrTransient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			policy := pipeline.Policy{Attempts: tt.attempts, Backoff: time.Microsecond}

			calls := 0
			err := policy.Do(context.Background(), func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})

			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("error = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPolicyDoCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	policy := pipeline.Policy{Attempts: 3, Backoff: time.Hour}

	err := policy.Do(ctx, func() error {
		return fmt.Errorf("%w: down", pipeline.ErrTransient)
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}
