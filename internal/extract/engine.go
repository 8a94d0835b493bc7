// Package extract evaluates extraction rules against a GraphQL response and
// arranges the emitted values into named, column-oriented frames.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"github.com/itchyny/gojq"
)

// Compile parses and compiles a jq expression.
func Compile(expression string) (*gojq.Code, error) {
	query, err := gojq.Parse(expression)
	if err != nil {
		var parseErr *gojq.ParseError
		if errors.As(err, &parseErr) {
			return nil, fmt.Errorf("invalid jq expression at position %d: %w", parseErr.Offset, err)
		}
		return nil, fmt.Errorf("invalid jq expression: %w", err)
	}

	code, err := gojq.Compile(query)
	if err != nil {
		return nil, fmt.Errorf("failed to compile jq expression: %w", err)
	}
	return code, nil
}

// Validate checks that an expression compiles without running it.
func Validate(expression string) error {
	_, err := Compile(expression)
	return err
}

// Evaluate runs code against input and collects every emitted value. The
// first runtime error stops evaluation.
func Evaluate(code *gojq.Code, input any) ([]any, error) {
	values := make([]any, 0)
	iter := code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return nil, describeRunError(err)
		}
		values = append(values, v)
	}
	return values, nil
}

// describeRunError decorates gojq runtime errors with a hint. gojq exposes
// most runtime failures as plain errors, so the hints are picked by message.
func describeRunError(err error) error {
	var haltErr *gojq.HaltError
	if errors.As(err, &haltErr) {
		if haltErr.Value() == nil {
			return fmt.Errorf("query halted: %w", err)
		}
		return fmt.Errorf("query halted with %v: %w", haltErr.Value(), err)
	}

	msg := err.Error()
	var hint string
	switch {
	case strings.Contains(msg, "cannot iterate over: null"):
		hint = " (the path may not exist in this response)"
	case strings.Contains(msg, "cannot index") && strings.Contains(msg, "with"):
		hint = " (field not found or wrong type)"
	case strings.Contains(msg, "object") && strings.Contains(msg, "cannot be iterated"):
		hint = " (expected array but got object, try removing '[]')"
	case strings.Contains(msg, "array") && strings.Contains(msg, "cannot be indexed"):
		hint = " (expected object but got array, try adding '[]')"
	}
	if hint == "" {
		return err
	}
	return fmt.Errorf("%w%s", err, hint)
}
