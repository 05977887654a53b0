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

// Package agent wires the wire codec and the DSL front-end into the
// per-datagram reaction loop described in spec §2: decode an inbound
// datagram, react, and (for a Create) compile a control program and
// encode it back out as a Pattern message. Like its two collaborators,
// Agent holds no mutable state of its own beyond the CompileOnCreate
// hook the caller supplies (spec §5: synchronous, stateless per call).
package agent

import (
	"github.com/ccp-project/ccp-agent/ccperr"
	"github.com/ccp-project/ccp-agent/lang"
	"github.com/ccp-project/ccp-agent/wire"
)

// CompileOnCreate produces the control-program source to install for a
// newly created flow. The datapath-interpreter side of this decision
// (which algorithm, what thresholds) is out of scope for this module;
// the caller supplies it.
type CompileOnCreate func(create wire.CreateMsg) (string, error)

// Agent reacts to inbound datagrams by decoding them and, for Create
// messages, compiling and encoding a Pattern reply.
type Agent struct {
	OnCreate CompileOnCreate
}

// New builds an Agent that compiles onCreate's program for every new
// flow it observes.
func New(onCreate CompileOnCreate) *Agent {
	return &Agent{OnCreate: onCreate}
}

// Handle decodes one inbound datagram and, if it is a Create message and
// OnCreate is set, compiles the returned source into a Pattern message
// ready to send back to the datapath. For every other message variant it
// returns the decoded Msg and a nil outbound buffer: the caller's own
// bookkeeping (flow table, metrics) reacts to Measure/Drop, which is
// opaque to this module.
func (a *Agent) Handle(datagram []byte) (wire.Msg, []byte, error) {
	msg, err := wire.Decode(datagram)
	if err != nil {
		return nil, nil, err
	}

	create, ok := msg.(wire.CreateMsg)
	if !ok || a.OnCreate == nil {
		return msg, nil, nil
	}

	src, err := a.OnCreate(create)
	if err != nil {
		return msg, nil, err
	}
	prog, err := lang.Compile([]byte(src))
	if err != nil {
		return msg, nil, err
	}

	out, err := wire.Encode(wire.PatternMsg{Sid: create.Sid, Program: prog})
	if err != nil {
		return msg, nil, ccperr.Wrap(ccperr.Malformed, err, "encoding compiled pattern for sid %d", create.Sid)
	}
	return msg, out, nil
}
