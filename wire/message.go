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

package wire

import "github.com/ccp-project/ccp-agent/lang"

// Msg is the closed set of messages that cross the datapath/agent
// boundary. It is a tagged union expressed as a Go interface implemented
// by exactly four structs, dispatched by type switch rather than by open
// extension (spec Design Notes: "tagged variants over inheritance").
type Msg interface {
	// Tag returns the wire type byte for this variant.
	Tag() Tag
	// SessionID returns the flow/session id carried by every variant.
	SessionID() uint32

	payloadLen() (int, error)
}

// CreateMsg is sent datapath -> agent when a new flow starts. This
// implementation picks the {start_seq, cong_alg} payload shape (the one
// the agent's deserializer needs); see SPEC_FULL.md §4.1 for why the
// flow-tuple shape is not implemented here.
type CreateMsg struct {
	Sid      uint32
	StartSeq uint32
	CongAlg  string
}

func (m CreateMsg) Tag() Tag            { return TagCreate }
func (m CreateMsg) SessionID() uint32   { return m.Sid }
func (m CreateMsg) payloadLen() (int, error) {
	return 4 + len(m.CongAlg), nil
}

// MeasureMsg is sent datapath -> agent on every ACK the datapath wants
// the agent informed of.
type MeasureMsg struct {
	Sid   uint32
	Ack   uint32
	RttUs uint32
	Rin   uint64
	Rout  uint64
}

func (m MeasureMsg) Tag() Tag          { return TagMeasure }
func (m MeasureMsg) SessionID() uint32 { return m.Sid }
func (m MeasureMsg) payloadLen() (int, error) {
	return MeasurePayloadLen, nil
}

// DropMsg is sent datapath -> agent to report a drop event, identified
// only by a short human-readable string (e.g. "timeout", "dupack").
type DropMsg struct {
	Sid   uint32
	Event string
}

func (m DropMsg) Tag() Tag          { return TagDrop }
func (m DropMsg) SessionID() uint32 { return m.Sid }
func (m DropMsg) payloadLen() (int, error) {
	return len(m.Event), nil
}

// PatternMsg is sent agent -> datapath carrying a compiled control
// program to execute on every ACK for the flow.
type PatternMsg struct {
	Sid     uint32
	Program lang.Program
}

func (m PatternMsg) Tag() Tag          { return TagPattern }
func (m PatternMsg) SessionID() uint32 { return m.Sid }
func (m PatternMsg) payloadLen() (int, error) {
	return m.Program.LenBytes(), nil
}
