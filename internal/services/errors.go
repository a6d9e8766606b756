package services

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds surfaced by the pipeline stages. None of them are retried
// automatically: each one points at missing tooling or bad data.
var (
	ErrUnsupportedFormat  = errors.New("unsupported format")
	ErrDecode             = errors.New("decode error")
	ErrEncode             = errors.New("encode error")
	ErrToolNotFound       = errors.New("tool not found")
	ErrToolExecution      = errors.New("tool execution error")
	ErrToolTimeout        = errors.New("tool timeout")
	ErrMalformedOutput    = errors.New("malformed output")
	ErrEmptyTimeline      = errors.New("empty timeline")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrDeliveryFailure    = errors.New("delivery failure")
	ErrValidation         = errors.New("validation error")
	ErrConfiguration      = errors.New("configuration error")
)

var kindNames = []struct {
	marker error
	name   string
}{
	{ErrUnsupportedFormat, "UnsupportedFormat"},
	{ErrDecode, "DecodeError"},
	{ErrEncode, "EncodeError"},
	{ErrToolNotFound, "ToolNotFound"},
	{ErrToolTimeout, "ToolTimeout"},
	{ErrToolExecution, "ToolExecutionError"},
	{ErrMalformedOutput, "MalformedOutput"},
	{ErrEmptyTimeline, "EmptyTimeline"},
	{ErrInvariantViolation, "InvariantViolation"},
	{ErrDeliveryFailure, "DeliveryFailure"},
	{ErrValidation, "ValidationError"},
	{ErrConfiguration, "ConfigurationError"},
}

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// KindOf names the error kind carried by err, or "Unknown" when no marker is
// attached.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kindNames {
		if errors.Is(err, k.marker) {
			return k.name
		}
	}
	return "Unknown"
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
