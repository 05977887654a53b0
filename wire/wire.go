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

// Package wire implements the length-prefixed, type-tagged binary framing
// exchanged between the datapath and the congestion-control agent.
package wire

// Tag identifies the wire variant of a Msg. It occupies the first byte
// of every encoded message.
type Tag byte

const (
	TagCreate  Tag = 0
	TagMeasure Tag = 1
	TagDrop    Tag = 2
	TagPattern Tag = 3
)

func (t Tag) String() string {
	switch t {
	case TagCreate:
		return "Create"
	case TagMeasure:
		return "Measure"
	case TagDrop:
		return "Drop"
	case TagPattern:
		return "Pattern"
	default:
		return "Unknown"
	}
}

// HeaderLen is the fixed 6-byte (tag, len, sid) header present on every
// message, little-endian throughout.
const HeaderLen = 6

// MaxMessageLen is the largest message the 1-byte length field can
// describe. Encode MUST refuse to produce anything larger.
const MaxMessageLen = 0xff

// MeasurePayloadLen is the fixed payload size of a Measure message:
// ack(u32) + rtt_us(u32) + rin(u64) + rout(u64).
const MeasurePayloadLen = 4 + 4 + 8 + 8
