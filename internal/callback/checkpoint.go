package callback

import (
	"context"
	"errors"

	"github.com/specialistvlad/nmgraph/internal/checkpoint"
	"github.com/specialistvlad/nmgraph/internal/ctxlog"
)

// Checkpoint saves the parameters of stateful modules every StepFreq steps,
// every EpochFreq epochs and at the end of training. With LoadFromStore set,
// the latest snapshot is restored before the first epoch.
type Checkpoint struct {
	Store         checkpoint.Store
	Modules       func() map[string]checkpoint.Stateful
	StepFreq      int
	EpochFreq     int
	LoadFromStore bool

	lastSaved int
}

var (
	_ TrainStarter = (*Checkpoint)(nil)
	_ BatchEnder   = (*Checkpoint)(nil)
	_ EpochEnder   = (*Checkpoint)(nil)
	_ TrainEnder   = (*Checkpoint)(nil)
)

func (c *Checkpoint) OnTrainStart(ctx context.Context, s *State) error {
	c.lastSaved = -1
	if !c.LoadFromStore {
		return nil
	}
	snap, err := checkpoint.Restore(ctx, c.Store, c.Modules())
	if errors.Is(err, checkpoint.ErrNotFound) {
		ctxlog.FromContext(ctx).Warn("No checkpoint to restore, training from scratch.")
		return nil
	}
	if err != nil {
		return err
	}
	ctxlog.FromContext(ctx).Info("Restored module parameters.", "checkpoint_step", snap.Step)
	return nil
}

func (c *Checkpoint) OnBatchEnd(ctx context.Context, s *State) error {
	if s.Stepped && c.StepFreq > 0 && s.Step%c.StepFreq == 0 {
		return c.save(ctx, s)
	}
	return nil
}

func (c *Checkpoint) OnEpochEnd(ctx context.Context, s *State) error {
	if c.EpochFreq > 0 && (s.Epoch+1)%c.EpochFreq == 0 {
		return c.save(ctx, s)
	}
	return nil
}

func (c *Checkpoint) OnTrainEnd(ctx context.Context, s *State) error {
	return c.save(ctx, s)
}

func (c *Checkpoint) save(ctx context.Context, s *State) error {
	if s.Step == c.lastSaved {
		return nil
	}
	if err := c.Store.Save(ctx, checkpoint.Capture(s.Step, s.Epoch, c.Modules())); err != nil {
		return err
	}
	c.lastSaved = s.Step
	return nil
}
