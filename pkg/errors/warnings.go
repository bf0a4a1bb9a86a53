package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/rs/zerolog"
)

var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("riskfold warning: %v\n", w)
	}
)

// SetWarningHandler replaces the global warning handler. Pass a no-op
// function to silence warnings entirely.
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// Warn reports a warning through the configured handler. Warnings signal
// degraded-but-valid behavior (undefined metrics, unseen categories) and
// never abort the pipeline.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	if warningHandler != nil {
		warningHandler(w)
	}
}

// UndefinedMetricWarning is raised when a metric is mathematically undefined
// for the given input (e.g. ROC-AUC with a single class) and a fallback
// value is substituted.
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("%s is undefined when %s; returning %g", w.Metric, w.Condition, w.Result)
}

// MarshalZerologObject adds structured warning information to a zerolog event.
func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("condition", w.Condition).
		Float64("result", w.Result).
		Str("type", "UndefinedMetricWarning")
}

// NewUndefinedMetricWarning creates a new UndefinedMetricWarning.
func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}

// UnseenCategoryWarning is raised when a categorical level appears at
// inference time that was never observed during fitting. The encoder
// substitutes the global statistic.
type UnseenCategoryWarning struct {
	Column   string
	Category string
	Fallback float64
}

func (w *UnseenCategoryWarning) Error() string {
	return fmt.Sprintf("column %q: unseen category %q mapped to global mean %g",
		w.Column, w.Category, w.Fallback)
}

// MarshalZerologObject adds structured warning information to a zerolog event.
func (w *UnseenCategoryWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("column", w.Column).
		Str("category", w.Category).
		Float64("fallback", w.Fallback).
		Str("type", "UnseenCategoryWarning")
}

// NewUnseenCategoryWarning creates a new UnseenCategoryWarning.
func NewUnseenCategoryWarning(column, category string, fallback float64) *UnseenCategoryWarning {
	return &UnseenCategoryWarning{Column: column, Category: category, Fallback: fallback}
}
