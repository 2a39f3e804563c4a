// Package loader reads knapsack instances from comma separated files.
//
// Two layouts are accepted. The standard one starts with a capacity line and
// an item count line followed by name,weight,value records:
//
//	10
//	4
//	a,2,3
//	...
//
// The legacy layout has item records only; capacity is then half the total
// weight, rounded down.
package loader

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/snow-ghost/knapsack/core"
	"go.uber.org/zap"
)

var (
	ErrFileNotFound    = errors.New("problem file not found")
	ErrMalformedRecord = errors.New("malformed record")
	ErrEmptyItemSet    = errors.New("no valid items")
)

// RecordError describes one bad record.
type RecordError struct {
	Line   int
	Reason string
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("line %d: %s: %s", e.Line, ErrMalformedRecord, e.Reason)
}

func (e *RecordError) Unwrap() error { return ErrMalformedRecord }

// Layout identifies which file layout was detected.
type Layout string

const (
	LayoutHeader Layout = "header"
	LayoutLegacy Layout = "legacy"
)

// Report summarizes a load.
type Report struct {
	Layout        Layout
	DeclaredCount int
	Skipped       []*RecordError
}

// Loader parses problem files. Skipped records are logged at warn level.
type Loader struct {
	logger *zap.Logger
}

func New(logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{logger: logger}
}

// LoadFile opens path and parses it.
func (l *Loader) LoadFile(path string) (core.Problem, Report, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return core.Problem{}, Report{}, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return core.Problem{}, Report{}, fmt.Errorf("failed to open problem file: %w", err)
	}
	defer f.Close()

	p, rep, err := l.Load(f)
	if err != nil {
		return core.Problem{}, rep, fmt.Errorf("%s: %w", path, err)
	}
	l.logger.Info("problem loaded",
		zap.String("path", path),
		zap.String("layout", string(rep.Layout)),
		zap.Int("items", len(p.Items)),
		zap.Float64("capacity", p.Capacity),
		zap.Int("skipped", len(rep.Skipped)),
	)
	return p, rep, nil
}

// Load parses a problem from r.
func (l *Loader) Load(r io.Reader) (core.Problem, Report, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	var (
		rep      Report
		items    []core.Item
		capacity float64
		header   int // header records consumed so far
	)

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			line := 0
			if errors.As(err, &pe) {
				line = pe.Line
			}
			l.skip(&rep, &RecordError{Line: line, Reason: err.Error()})
			continue
		}
		line, _ := cr.FieldPos(0)

		// header detection only applies to the first two records
		if rep.Layout == "" {
			if len(rec) == 3 {
				rep.Layout = LayoutLegacy
			} else {
				c, perr := parseCapacity(rec)
				if perr != nil {
					return core.Problem{}, rep, &RecordError{Line: line, Reason: perr.Error()}
				}
				rep.Layout = LayoutHeader
				capacity = c
				header = 1
				continue
			}
		} else if rep.Layout == LayoutHeader && header == 1 {
			header = 2
			if len(rec) == 1 {
				n, perr := strconv.Atoi(strings.TrimSpace(rec[0]))
				if perr != nil || n < 0 {
					l.skip(&rep, &RecordError{Line: line, Reason: fmt.Sprintf("invalid item count %q", rec[0])})
				} else {
					rep.DeclaredCount = n
				}
				continue
			}
		}

		it, rerr := parseItem(rec)
		if rerr != nil {
			l.skip(&rep, &RecordError{Line: line, Reason: rerr.Error()})
			continue
		}
		items = append(items, it)
	}

	if len(items) == 0 {
		return core.Problem{}, rep, ErrEmptyItemSet
	}

	if rep.Layout == LayoutLegacy {
		total := 0
		for _, it := range items {
			total += it.Weight
		}
		capacity = float64(total / 2)
	}
	if rep.Layout == LayoutHeader && rep.DeclaredCount > 0 && rep.DeclaredCount != len(items) {
		l.logger.Warn("item count mismatch",
			zap.Int("declared", rep.DeclaredCount),
			zap.Int("loaded", len(items)),
		)
	}

	return core.Problem{Items: items, Capacity: capacity}, rep, nil
}

func (l *Loader) skip(rep *Report, e *RecordError) {
	rep.Skipped = append(rep.Skipped, e)
	l.logger.Warn("skipping malformed record", zap.Int("line", e.Line), zap.String("reason", e.Reason))
}

func parseCapacity(rec []string) (float64, error) {
	if len(rec) != 1 {
		return 0, fmt.Errorf("expected capacity, got %d fields", len(rec))
	}
	c, err := strconv.ParseFloat(strings.TrimSpace(rec[0]), 64)
	if err != nil || c < 0 || math.IsNaN(c) || math.IsInf(c, 0) {
		return 0, fmt.Errorf("invalid capacity %q", rec[0])
	}
	return c, nil
}

func parseItem(rec []string) (core.Item, error) {
	if len(rec) != 3 {
		return core.Item{}, fmt.Errorf("expected name,weight,value, got %d fields", len(rec))
	}
	name := strings.TrimSpace(rec[0])
	if name == "" {
		return core.Item{}, errors.New("empty item name")
	}
	w, err := strconv.Atoi(strings.TrimSpace(rec[1]))
	if err != nil || w < 0 {
		return core.Item{}, fmt.Errorf("invalid weight %q", rec[1])
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return core.Item{}, fmt.Errorf("invalid value %q", rec[2])
	}
	return core.Item{Name: name, Weight: w, Value: v}, nil
}
