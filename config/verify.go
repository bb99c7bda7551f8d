package config

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNoTargets = errors.New("no targets configured")
	ErrNoAddress = errors.New("target has no address")
)

type DuplicateTarget struct {
	Name     string
	Position int
	FirstAt  int
}

func (err *DuplicateTarget) Error() string {
	return fmt.Sprintf("target '%s' at position %d has already been configured at position %d", err.Name, err.Position, err.FirstAt)
}

type InvalidTarget struct {
	Name string
	Err  error
}

func (err *InvalidTarget) Error() string {
	return fmt.Sprintf("target '%s': %v", err.Name, err.Err)
}

func (err *InvalidTarget) Unwrap() error {
	return err.Err
}

type InvalidField struct {
	Field string
	Err   error
}

func (err *InvalidField) Error() string {
	return fmt.Sprintf("%s: %v", err.Field, err.Err)
}

func (err *InvalidField) Unwrap() error {
	return err.Err
}

// VerifyConfig returns every problem in cfg instead of stopping at the first.
func VerifyConfig(cfg ExporterConfig) []error {
	errs := []error{}

	durations := []struct {
		field string
		value string
	}{
		{"pollInterval", cfg.PollInterval},
		{"queryGap", cfg.QueryGap},
		{"defaultTimeout", cfg.DefaultTimeout},
	}
	for _, d := range durations {
		if _, err := time.ParseDuration(d.value); err != nil {
			errs = append(errs, &InvalidField{Field: d.field, Err: err})
		}
	}

	if len(cfg.Targets) == 0 {
		return append(errs, ErrNoTargets)
	}

	names := make(map[string]int)
	for index, target := range cfg.Targets {
		name := target.targetName()
		if target.Address == "" {
			errs = append(errs, &InvalidTarget{Name: name, Err: ErrNoAddress})
			continue
		}
		if _, err := NewQueryTarget(target, time.Second); err != nil {
			errs = append(errs, err)
			continue
		}

		otherIndex, ok := names[name]
		if ok {
			errs = append(errs, &DuplicateTarget{
				Name:     name,
				Position: index,
				FirstAt:  otherIndex,
			})
			continue
		}
		names[name] = index
	}
	return errs
}
