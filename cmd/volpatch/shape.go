package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/born-ml/volpatch/tensor"
)

// parseShape reads a comma-separated list of extents such as "64,64,32".
func parseShape(s string) (tensor.Shape, error) {
	fields := strings.Split(s, ",")
	shape := make(tensor.Shape, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		n, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf("shape %q: %w", s, err)
		}
		shape = append(shape, n)
	}
	if len(shape) == 0 {
		return nil, fmt.Errorf("shape %q: no dimensions", s)
	}
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("shape %q: %w", s, err)
	}
	return shape, nil
}

// shapeFlag is a flag.Value holding a tensor.Shape.
type shapeFlag struct {
	shape tensor.Shape
}

func (f *shapeFlag) String() string {
	if f == nil || f.shape == nil {
		return ""
	}
	parts := make([]string, len(f.shape))
	for i, n := range f.shape {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

func (f *shapeFlag) Set(s string) error {
	shape, err := parseShape(s)
	if err != nil {
		return err
	}
	f.shape = shape
	return nil
}
