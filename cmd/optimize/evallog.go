package main

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"
)

// evalRecord is one row of evaluations.csv.
type evalRecord struct {
	Eval    int     `csv:"eval"`
	Fitness float64 `csv:"fitness"`
	Score

	SmoothingRadius float64 `csv:"smoothing_radius"`
	ForceScale      float64 `csv:"force_scale"`
	MaxVelocity     float64 `csv:"max_velocity"`
	DampingFactor   float64 `csv:"damping_factor"`
}

// newEvalRecord builds a row from clamped parameter values in Specs order.
func newEvalRecord(eval int, fitness float64, score Score, values []float64) evalRecord {
	return evalRecord{
		Eval:            eval,
		Fitness:         fitness,
		Score:           score,
		SmoothingRadius: values[0],
		ForceScale:      values[1],
		MaxVelocity:     values[2],
		DampingFactor:   values[3],
	}
}

// evalLog appends evaluation rows to a CSV file, header first.
type evalLog struct {
	f             *os.File
	headerWritten bool
}

func newEvalLog(path string) (*evalLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating evaluation log: %w", err)
	}
	return &evalLog{f: f}, nil
}

// Write appends one row.
func (l *evalLog) Write(rec evalRecord) error {
	rows := []evalRecord{rec}
	if !l.headerWritten {
		if err := gocsv.Marshal(rows, l.f); err != nil {
			return fmt.Errorf("writing evaluation: %w", err)
		}
		l.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(rows, l.f); err != nil {
		return fmt.Errorf("writing evaluation: %w", err)
	}
	return nil
}

// Close closes the file.
func (l *evalLog) Close() error {
	return l.f.Close()
}
