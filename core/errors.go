package core

import "errors"

var (
	// ErrInvalidMetric is returned for a fitness metric outside the supported set.
	ErrInvalidMetric = errors.New("invalid fitness metric")
	// ErrInvalidSelectionMethod is returned for an unknown selection strategy name.
	ErrInvalidSelectionMethod = errors.New("invalid selection method")
	// ErrDegenerateSelection is returned by strict roulette selection when the
	// population's total fitness is zero.
	ErrDegenerateSelection = errors.New("degenerate selection: total fitness is zero")
	// ErrInvalidGenomeLength is returned when a genome does not match the item
	// count or two parents differ in length.
	ErrInvalidGenomeLength = errors.New("invalid genome length")
	// ErrInvalidParams wraps range and consistency failures of run parameters.
	ErrInvalidParams = errors.New("invalid run parameters")
)
