// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package avl

// Insert - add a key or overwrite the value of an existing key
//
// returns true if a new node was added
func (tree *Tree) Insert(key int64, value interface{}) bool {
	root, added, _ := insert(key, value, tree.root)
	root.up = nil
	tree.root = root
	if added {
		tree.count += 1
	}
	return added
}

// internal: returns the new sub-tree root, whether a node was added
// and whether the height of the sub-tree increased
func insert(key int64, value interface{}, p *Node) (*Node, bool, bool) {
	if nil == p {
		return &Node{key: key, value: value}, true, true
	}

	switch {
	case key < p.key:
		child, added, grown := insert(key, value, p.left)
		p.left = child
		child.up = p
		if added {
			p.leftNodes += 1
		}
		if !grown {
			return p, added, false
		}
		switch p.balance {
		case +1:
			p.balance = 0
			return p, added, false
		case 0:
			p.balance = -1
			return p, added, true
		}
		return p.rebalanceLeft(), added, false

	case key > p.key:
		child, added, grown := insert(key, value, p.right)
		p.right = child
		child.up = p
		if added {
			p.rightNodes += 1
		}
		if !grown {
			return p, added, false
		}
		switch p.balance {
		case -1:
			p.balance = 0
			return p, added, false
		case 0:
			p.balance = +1
			return p, added, true
		}
		return p.rebalanceRight(), added, false

	default:
		p.value = value
		return p, false, false
	}
}

// set the parent pointer of a possibly empty sub-tree
func attach(child *Node, parent *Node) {
	if nil != child {
		child.up = parent
	}
}

// internal: left sub-tree is two levels higher than the right
func (p *Node) rebalanceLeft() *Node {
	p1 := p.left

	if -1 == p1.balance {
		// single LL rotation
		p.left = p1.right
		attach(p.left, p)
		p1.right = p
		p.up = p1

		p.leftNodes = p1.rightNodes
		p1.rightNodes = 1 + p.leftNodes + p.rightNodes

		p.balance = 0
		p1.balance = 0
		return p1
	}

	// double LR rotation
	p2 := p1.right
	p1.right = p2.left
	attach(p1.right, p1)
	p.left = p2.right
	attach(p.left, p)
	p2.left = p1
	p1.up = p2
	p2.right = p
	p.up = p2

	p.balance = 0
	if -1 == p2.balance {
		p.balance = +1
	}
	p1.balance = 0
	if +1 == p2.balance {
		p1.balance = -1
	}
	p2.balance = 0

	p1.rightNodes = p2.leftNodes
	p.leftNodes = p2.rightNodes
	p2.leftNodes = 1 + p1.leftNodes + p1.rightNodes
	p2.rightNodes = 1 + p.leftNodes + p.rightNodes
	return p2
}

// internal: right sub-tree is two levels higher than the left
func (p *Node) rebalanceRight() *Node {
	p1 := p.right

	if +1 == p1.balance {
		// single RR rotation
		p.right = p1.left
		attach(p.right, p)
		p1.left = p
		p.up = p1

		p.rightNodes = p1.leftNodes
		p1.leftNodes = 1 + p.leftNodes + p.rightNodes

		p.balance = 0
		p1.balance = 0
		return p1
	}

	// double RL rotation
	p2 := p1.left
	p1.left = p2.right
	attach(p1.left, p1)
	p.right = p2.left
	attach(p.right, p)
	p2.right = p1
	p1.up = p2
	p2.left = p
	p.up = p2

	p.balance = 0
	if +1 == p2.balance {
		p.balance = -1
	}
	p1.balance = 0
	if -1 == p2.balance {
		p1.balance = +1
	}
	p2.balance = 0

	p1.leftNodes = p2.rightNodes
	p.rightNodes = p2.leftNodes
	p2.leftNodes = 1 + p.leftNodes + p.rightNodes
	p2.rightNodes = 1 + p1.leftNodes + p1.rightNodes
	return p2
}
