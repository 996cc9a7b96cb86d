// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package statesystem

import (
	"fmt"
	"regexp"

	"github.com/bitmark-inc/statehistory/attribute"
	"github.com/bitmark-inc/statehistory/fault"
)

// NumAttributes - number of attributes ever created
func (s *System) NumAttributes() int {
	return s.tree.Count()
}

// internal: quark must name an existing attribute
func (s *System) checkQuark(quark int) error {
	if err := s.check(); nil != err {
		return err
	}
	if count := s.tree.Count(); quark < 0 || quark >= count {
		return fmt.Errorf("quark: %d  count: %d: %w", quark, count, fault.ErrQuarkOutOfRange)
	}
	return nil
}

// QuarkAbsolute - quark of an existing path from the root
func (s *System) QuarkAbsolute(path ...string) (int, error) {
	return s.QuarkRelative(attribute.Root, path...)
}

// OptQuarkAbsolute - like QuarkAbsolute but attribute.Invalid when absent
func (s *System) OptQuarkAbsolute(path ...string) (int, error) {
	return s.OptQuarkRelative(attribute.Root, path...)
}

// QuarkAbsoluteAndAdd - quark of a path from the root, created if absent
func (s *System) QuarkAbsoluteAndAdd(path ...string) (int, error) {
	return s.QuarkRelativeAndAdd(attribute.Root, path...)
}

// QuarkRelative - quark of an existing path below start
func (s *System) QuarkRelative(start int, path ...string) (int, error) {
	if err := s.check(); nil != err {
		return attribute.Invalid, err
	}
	return s.tree.Resolve(start, path...)
}

// OptQuarkRelative - like QuarkRelative but attribute.Invalid when absent
func (s *System) OptQuarkRelative(start int, path ...string) (int, error) {
	if err := s.check(); nil != err {
		return attribute.Invalid, err
	}
	return s.tree.Optional(start, path...)
}

// QuarkRelativeAndAdd - quark of a path below start, created if absent
func (s *System) QuarkRelativeAndAdd(start int, path ...string) (int, error) {
	if err := s.check(); nil != err {
		return attribute.Invalid, err
	}
	return s.tree.ResolveOrCreate(start, path...)
}

// Quarks - expand a pattern from the root, see attribute.ExpandPattern
func (s *System) Quarks(pattern ...string) ([]int, error) {
	return s.QuarksRelative(attribute.Root, pattern...)
}

// QuarksRelative - expand a pattern from start
func (s *System) QuarksRelative(start int, pattern ...string) ([]int, error) {
	if err := s.check(); nil != err {
		return nil, err
	}
	return s.tree.ExpandPattern(start, pattern...)
}

// SubAttributes - children of a quark in creation order, depth first
// if recursive
func (s *System) SubAttributes(quark int, recursive bool) ([]int, error) {
	if err := s.check(); nil != err {
		return nil, err
	}
	return s.tree.SubAttributes(quark, recursive)
}

// SubAttributesMatching - immediate children whose name matches a
// regular expression
func (s *System) SubAttributesMatching(quark int, expression string) ([]int, error) {
	if err := s.check(); nil != err {
		return nil, err
	}
	pattern, err := regexp.Compile(expression)
	if nil != err {
		return nil, fmt.Errorf("expression: %q: %s: %w", expression, err, fault.ErrInvalidPath)
	}
	return s.tree.SubAttributesMatching(quark, pattern)
}

// ParentAttribute - quark of the parent, attribute.Root at top level
func (s *System) ParentAttribute(quark int) (int, error) {
	if err := s.check(); nil != err {
		return attribute.Invalid, err
	}
	return s.tree.Parent(quark)
}

// AttributeName - last segment of the path
func (s *System) AttributeName(quark int) (string, error) {
	if err := s.check(); nil != err {
		return "", err
	}
	return s.tree.Name(quark)
}

// FullAttributePath - the path as a single escaped string
func (s *System) FullAttributePath(quark int) (string, error) {
	if err := s.check(); nil != err {
		return "", err
	}
	return s.tree.FullPath(quark)
}

// FullAttributePathArray - the path segments from the root
func (s *System) FullAttributePathArray(quark int) ([]string, error) {
	if err := s.check(); nil != err {
		return nil, err
	}
	return s.tree.FullPathArray(quark)
}
