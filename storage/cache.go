// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"strconv"
	"time"

	cache "github.com/patrickmn/go-cache"

	"github.com/bitmark-inc/statehistory/interval"
)

const (
	defaultExpiration = 2 * time.Minute
	cleanupInterval   = 1 * time.Minute
)

// the interval most recently found for each quark
//
// stored intervals are never modified so a cached entry cannot go
// stale, expiry only bounds memory
type lastHit struct {
	cache      *cache.Cache
	expiration time.Duration
}

func newLastHit(seconds int) *lastHit {
	expiration := defaultExpiration
	if seconds > 0 {
		expiration = time.Duration(seconds) * time.Second
	}
	return &lastHit{
		cache:      cache.New(expiration, cleanupInterval),
		expiration: expiration,
	}
}

// the cached interval of the quark if it contains t
func (c *lastHit) get(t int64, quark int) (*interval.Interval, bool) {
	obj, found := c.cache.Get(strconv.Itoa(quark))
	if !found {
		return nil, false
	}
	iv := obj.(interval.Interval)
	if !iv.Contains(t) {
		return nil, false
	}
	return &iv, true
}

func (c *lastHit) set(iv interval.Interval) {
	c.cache.Set(strconv.Itoa(iv.Quark), iv, c.expiration)
}

func (c *lastHit) clear() {
	c.cache.Flush()
}
