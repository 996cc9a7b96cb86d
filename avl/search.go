// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package avl

// Search - find a specific key and its zero based index
//
// returns nil, -1 if not found
func (tree *Tree) Search(key int64) (*Node, int) {
	index := 0
	for p := tree.root; nil != p; {
		switch {
		case key < p.key:
			p = p.left
		case key > p.key:
			index += p.leftNodes + 1
			p = p.right
		default:
			return p, index + p.leftNodes
		}
	}
	return nil, -1
}

// Ceiling - the node with the lowest key that is >= key
func (tree *Tree) Ceiling(key int64) *Node {
	var best *Node
	for p := tree.root; nil != p; {
		switch {
		case key < p.key:
			best = p
			p = p.left
		case key > p.key:
			p = p.right
		default:
			return p
		}
	}
	return best
}

// Floor - the node with the highest key that is <= key
func (tree *Tree) Floor(key int64) *Node {
	var best *Node
	for p := tree.root; nil != p; {
		switch {
		case key < p.key:
			p = p.left
		case key > p.key:
			best = p
			p = p.right
		default:
			return p
		}
	}
	return best
}
