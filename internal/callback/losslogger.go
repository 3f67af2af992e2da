package callback

import (
	"context"
	"log/slog"

	"github.com/specialistvlad/nmgraph/internal/ctxlog"
	"github.com/specialistvlad/nmgraph/internal/nodeid"
	"github.com/specialistvlad/nmgraph/internal/tensor"
)

// LossLogger logs selected tensors on the batch that completes every
// StepFreq-th optimizer step.
type LossLogger struct {
	Handles []nodeid.Handle
	// Names labels the handles in the log; defaults to the handle string.
	Names    []string
	StepFreq int
	// Print replaces the default slog output when set.
	Print func(ctx context.Context, s *State, values map[string]any)
}

var (
	_ TensorRequester = (*LossLogger)(nil)
	_ BatchEnder      = (*LossLogger)(nil)
)

func (l *LossLogger) Tensors() []nodeid.Handle {
	return l.Handles
}

func (l *LossLogger) OnBatchEnd(ctx context.Context, s *State) error {
	freq := l.StepFreq
	if freq <= 0 {
		freq = 1
	}
	if !s.Stepped || s.Step%freq != 0 {
		return nil
	}

	values := make(map[string]any, len(l.Handles))
	for i, h := range l.Handles {
		name := h.String()
		if i < len(l.Names) && l.Names[i] != "" {
			name = l.Names[i]
		}
		values[name] = s.Tensors[h]
	}

	if l.Print != nil {
		l.Print(ctx, s, values)
		return nil
	}

	attrs := []any{"step", s.Step, "epoch", s.Epoch, "lr", s.LR}
	for name, v := range values {
		attrs = append(attrs, slog.String(name, tensor.Format(v)))
	}
	ctxlog.FromContext(ctx).Info("Training progress.", attrs...)
	return nil
}
