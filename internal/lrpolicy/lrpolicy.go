// Package lrpolicy provides learning-rate schedules for the train action.
//
// Every policy optionally warms up linearly for WarmupSteps (or
// WarmupRatio * total steps), then follows its own decay curve down to MinLR,
// which is also returned once the step reaches the total.
package lrpolicy

import (
	"fmt"
	"math"
	"sort"
)

// Schedule maps a global step to a learning rate.
type Schedule func(step int) float64

// Options tune a policy.
type Options struct {
	WarmupSteps int
	WarmupRatio float64
	MinLR       float64
}

type curve func(base, minLR float64, step, warmup, total int) float64

var policies = map[string]curve{
	"Constant": func(base, _ float64, _, _, _ int) float64 {
		return base
	},
	"WarmupAnnealing": func(base, minLR float64, step, warmup, total int) float64 {
		mult := float64(total-step) / float64(total-warmup)
		return math.Max(base*mult, minLR)
	},
	"SquareAnnealing": func(base, minLR float64, step, warmup, total int) float64 {
		mult := float64(total-step) / float64(total-warmup)
		return (base-minLR)*mult*mult + minLR
	},
	"CosineAnnealing": func(base, minLR float64, step, warmup, total int) float64 {
		progress := float64(step-warmup) / float64(total-warmup)
		return minLR + 0.5*(base-minLR)*(1+math.Cos(math.Pi*progress))
	},
	"InverseSquareRootAnnealing": func(base, minLR float64, step, warmup, _ int) float64 {
		return math.Max(base/math.Sqrt(float64(step-warmup+1)), minLR)
	},
}

// Names returns the known policy names in sorted order.
func Names() []string {
	names := make([]string, 0, len(policies))
	for n := range policies {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Get builds the named schedule for a run of totalSteps optimizer steps.
func Get(name string, base float64, totalSteps int, opts Options) (Schedule, error) {
	c, ok := policies[name]
	if !ok {
		return nil, fmt.Errorf("unknown lr policy '%s', expected one of %v", name, Names())
	}
	if totalSteps <= 0 {
		return nil, fmt.Errorf("lr policy '%s' needs a positive number of steps, got %d", name, totalSteps)
	}
	if opts.WarmupSteps > 0 && opts.WarmupRatio > 0 {
		return nil, fmt.Errorf("lr policy '%s': warmup_steps and warmup_ratio are mutually exclusive", name)
	}

	warmup := opts.WarmupSteps
	if opts.WarmupRatio > 0 {
		warmup = int(math.Ceil(opts.WarmupRatio * float64(totalSteps)))
	}
	if warmup >= totalSteps {
		return nil, fmt.Errorf("lr policy '%s': warmup of %d steps must be shorter than %d total steps", name, warmup, totalSteps)
	}

	return func(step int) float64 {
		if warmup > 0 && step < warmup {
			return base * float64(step+1) / float64(warmup+1)
		}
		if step >= totalSteps {
			if name == "Constant" {
				return base
			}
			return opts.MinLR
		}
		return c(base, opts.MinLR, step, warmup, totalSteps)
	}, nil
}

// Constant returns a schedule that always yields lr.
func Constant(lr float64) Schedule {
	return func(int) float64 { return lr }
}
