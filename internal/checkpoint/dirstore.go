package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/specialistvlad/nmgraph/internal/ctxlog"
)

var fileRegex = regexp.MustCompile(`^checkpoint-STEP-(\d+)\.nmc$`)

// FileName returns the file name used for a snapshot at step.
func FileName(step int) string {
	return fmt.Sprintf("checkpoint-STEP-%d.nmc", step)
}

// StepOf parses the step out of a snapshot file name.
func StepOf(name string) (int, bool) {
	m := fileRegex.FindStringSubmatch(name)
	if m == nil {
		return 0, false
	}
	step, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return step, true
}

// DirStore keeps snapshots in a local directory.
type DirStore struct {
	Dir string
}

var _ Store = (*DirStore)(nil)

// Path returns the file path of the snapshot at step.
func (d *DirStore) Path(step int) string {
	return filepath.Join(d.Dir, FileName(step))
}

// Save writes the snapshot through a temp file and renames it into place.
func (d *DirStore) Save(ctx context.Context, s *Snapshot) error {
	log := ctxlog.FromContext(ctx)

	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return fmt.Errorf("creating checkpoint directory: %w", err)
	}

	tempFile, err := os.CreateTemp(d.Dir, "checkpoint-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}

	shouldDeleteTempFile := true
	defer func() {
		if shouldDeleteTempFile {
			if err := os.Remove(tempFile.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
				log.Error("Failed to remove temp file.", "path", tempFile.Name(), "error", err)
			}
		}
	}()

	if err := Encode(tempFile, s); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}

	dest := d.Path(s.Step)
	if err := os.Rename(tempFile.Name(), dest); err != nil {
		return fmt.Errorf("renaming temp file: %w", err)
	}
	shouldDeleteTempFile = false

	log.Info("Checkpoint saved.", "path", dest, "step", s.Step, "modules", len(s.Modules))
	return nil
}

// LatestStep returns the highest saved step, or ErrNotFound.
func (d *DirStore) LatestStep() (int, error) {
	entries, err := os.ReadDir(d.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, ErrNotFound
		}
		return 0, fmt.Errorf("reading checkpoint directory: %w", err)
	}

	latest := -1
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if step, ok := StepOf(e.Name()); ok && step > latest {
			latest = step
		}
	}
	if latest < 0 {
		return 0, ErrNotFound
	}
	return latest, nil
}

// Latest loads the snapshot with the highest step.
func (d *DirStore) Latest(ctx context.Context) (*Snapshot, error) {
	step, err := d.LatestStep()
	if err != nil {
		return nil, err
	}
	return d.Load(ctx, step)
}

// Load reads the snapshot saved at step.
func (d *DirStore) Load(ctx context.Context, step int) (*Snapshot, error) {
	path := d.Path(step)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening checkpoint: %w", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("reading checkpoint %q: %w", path, err)
	}
	ctxlog.FromContext(ctx).Info("Checkpoint loaded.", "path", path, "step", s.Step)
	return s, nil
}
