// Copyright 2024 tobyzxj
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package agent

import (
	"strconv"

	"github.com/hashicorp/go-multierror"

	"github.com/ccp-project/ccp-agent/wire"
)

// Reply pairs a decoded message with whatever outbound datagram reacting
// to it produced (nil for anything but a Create).
type Reply struct {
	Msg      wire.Msg
	Outbound []byte
}

// ProcessBatch handles every datagram drained from one poll tick
// independently: a malformed datagram or a DSL compile failure must not
// poison the rest of the batch (spec §7). Failures are collected with
// multierror instead of stopping at the first one, so the caller can log
// every bad datagram in a tick rather than just the first.
func (a *Agent) ProcessBatch(datagrams [][]byte) ([]Reply, error) {
	var errs *multierror.Error
	replies := make([]Reply, 0, len(datagrams))

	for i, dg := range datagrams {
		msg, out, err := a.Handle(dg)
		if err != nil {
			errs = multierror.Append(errs, wrapDatagramError(i, err))
			continue
		}
		replies = append(replies, Reply{Msg: msg, Outbound: out})
	}

	return replies, errs.ErrorOrNil()
}

type datagramError struct {
	index int
	err   error
}

func wrapDatagramError(index int, err error) error {
	return &datagramError{index: index, err: err}
}

func (e *datagramError) Error() string {
	return "datagram " + strconv.Itoa(e.index) + ": " + e.err.Error()
}

func (e *datagramError) Unwrap() error { return e.err }
