// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package avl

// CheckUp - check the up pointers for consistency
func (tree *Tree) CheckUp() bool {
	return checkUp(tree.root, nil)
}

func checkUp(p *Node, up *Node) bool {
	if nil == p {
		return true
	}
	if p.up != up {
		return false
	}
	return checkUp(p.left, p) && checkUp(p.right, p)
}

// CheckCounts - check the sub-tree node counts and balance factors
func (tree *Tree) CheckCounts() bool {
	n, _, ok := checkCounts(tree.root)
	return ok && n == tree.count
}

// returns nodes, height, consistent
func checkCounts(p *Node) (int, int, bool) {
	if nil == p {
		return 0, 0, true
	}
	nl, hl, okl := checkCounts(p.left)
	nr, hr, okr := checkCounts(p.right)
	if !okl || !okr || nl != p.leftNodes || nr != p.rightNodes || hr-hl != p.balance {
		return 0, 0, false
	}
	h := hl
	if hr > h {
		h = hr
	}
	return nl + nr + 1, h + 1, true
}
