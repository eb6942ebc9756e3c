// Package errors provides the error and warning taxonomy for the Stabl
// library. Errors carry cockroachdb/errors stack traces and marshal
// themselves into zerolog events as structured objects. Warnings follow the
// scikit-learn convention: they are reported through a process-wide handler
// instead of aborting the computation that raised them.
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	Global warning handling
//
// ===========================================================================

var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		log.Printf("stabl-warning: %v\n", w)
	}
	// zerolog sink, installed lazily to avoid an import cycle with pkg/log.
	zerologWarnFunc func(warning error)
)

// SetWarningHandler replaces the library-wide warning handler. Passing a
// no-op function silences warnings entirely.
func SetWarningHandler(handler func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	warningHandler = handler
}

// SetZerologWarnFunc installs a zerolog-backed warning sink. When set it
// takes precedence over the plain handler.
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn reports a non-fatal condition through the configured handler.
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}
	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	Selection-specific error types
//
// ===========================================================================

// InsufficientVarianceError reports that a resample (or the full training
// set) lacks outcome variance: fewer than two classes for classification, or
// a degenerate label variance for regression. Raised after the bounded retry
// budget is exhausted.
type InsufficientVarianceError struct {
	Op      string
	Retries int
	Reason  string
}

func (e *InsufficientVarianceError) Error() string {
	return fmt.Sprintf("stabl: %s: insufficient outcome variance after %d retries: %s", e.Op, e.Retries, e.Reason)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *InsufficientVarianceError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("retries", e.Retries).
		Str("reason", e.Reason).
		Str("type", "InsufficientVarianceError")
}

// NewInsufficientVarianceError creates an InsufficientVarianceError with a
// stack trace attached.
func NewInsufficientVarianceError(op string, retries int, reason string) error {
	err := &InsufficientVarianceError{Op: op, Retries: retries, Reason: reason}
	return errors.WithStack(err)
}

// ConfigurationError reports an invalid or contradictory configuration.
// Configuration validation fails fast: it is raised before any resampling or
// fitting starts.
type ConfigurationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("stabl: invalid configuration for '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *ConfigurationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ConfigurationError")
}

// NewConfigurationError creates a ConfigurationError with a stack trace
// attached.
func NewConfigurationError(param, reason string, value interface{}) error {
	err := &ConfigurationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	Selection-specific warning types
//
// ===========================================================================

// FitConvergenceWarning is raised when the base estimator fails to converge
// at one grid point. The grid point contributes an empty selection record;
// the run continues.
type FitConvergenceWarning struct {
	Estimator  string
	Lambda     float64
	Iterations int
}

func (w *FitConvergenceWarning) Error() string {
	return fmt.Sprintf("%s failed to converge after %d iterations at penalty %g. Consider increasing max_iter or loosening the tolerance.",
		w.Estimator, w.Iterations, w.Lambda)
}

// MarshalZerologObject adds structured warning information to a zerolog event.
func (w *FitConvergenceWarning) MarshalZerologObject(event *zerolog.Event) {
	event.Str("estimator", w.Estimator).
		Float64("lambda", w.Lambda).
		Int("iterations", w.Iterations).
		Str("type", "FitConvergenceWarning")
}

// NewFitConvergenceWarning creates a new FitConvergenceWarning.
func NewFitConvergenceWarning(estimator string, lambda float64, iterations int) *FitConvergenceWarning {
	return &FitConvergenceWarning{Estimator: estimator, Lambda: lambda, Iterations: iterations}
}

// FDRTargetUnreachableWarning is raised when no threshold in the scanned
// range achieves the requested false-discovery-rate target. The run completes
// with the most conservative achievable feature set and stays flagged.
type FDRTargetUnreachableWarning struct {
	MinFDR float64
	Target float64
}

func (w *FDRTargetUnreachableWarning) Error() string {
	return fmt.Sprintf("no threshold reaches the FDR target %.3f (best estimate %.3f); returning the most conservative feature set",
		w.Target, w.MinFDR)
}

// MarshalZerologObject adds structured warning information to a zerolog event.
func (w *FDRTargetUnreachableWarning) MarshalZerologObject(event *zerolog.Event) {
	event.Float64("min_fdr", w.MinFDR).
		Float64("target", w.Target).
		Str("type", "FDRTargetUnreachableWarning")
}

// NewFDRTargetUnreachableWarning creates a new FDRTargetUnreachableWarning.
func NewFDRTargetUnreachableWarning(minFDR, target float64) *FDRTargetUnreachableWarning {
	return &FDRTargetUnreachableWarning{MinFDR: minFDR, Target: target}
}

// ===========================================================================
//
//	General structured error types
//
// ===========================================================================

// NotFittedError is returned when Predict, Transform or an accessor is called
// on an estimator that has not been fitted.
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("stabl: %s: this estimator is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError creates a NotFittedError with a stack trace attached.
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// DimensionError reports a shape mismatch between inputs.
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("stabl: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject adds structured error information to a zerolog event.
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("type", "DimensionError")
}

// NewDimensionError creates a DimensionError with a stack trace attached.
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValueError reports an argument whose value is invalid for the operation.
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("stabl: %s: %s", e.Op, e.Message)
}

// NewValueError creates a ValueError with a stack trace attached.
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors wrappers
//
// ===========================================================================

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap wraps an error with a message.
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf wraps an error with a formatted message.
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New creates a new error with a stack trace.
func New(message string) error {
	return errors.New(message)
}

// Newf creates a new formatted error with a stack trace.
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack annotates err with a stack trace.
func WithStack(err error) error {
	return errors.WithStack(err)
}

// Mark associates err with a reference error so Is(err, reference) holds
// without hiding err's own chain.
func Mark(err, reference error) error {
	return errors.Mark(err, reference)
}

// ===========================================================================
//
//	Common error variables
//
// ===========================================================================

var (
	// ErrEmptyData is returned when an empty matrix or vector is supplied.
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix is returned when a linear solve hits a singular
	// system.
	ErrSingularMatrix = New("singular matrix")

	// ErrTooManyFailures is returned when the per-run fit failure rate
	// exceeds the configured bound.
	ErrTooManyFailures = New("fit failure rate exceeded the configured bound")
)
