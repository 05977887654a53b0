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

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"

	"github.com/ccp-project/ccp-agent/ccperr"
	"github.com/ccp-project/ccp-agent/lang"
)

// Encode serializes m into a self-describing datagram: tag, length,
// session id, then the variant payload. It is a pure function of m; the
// codec holds no state (spec §4.1, §5).
func Encode(m Msg) ([]byte, error) {
	payloadLen, err := m.payloadLen()
	if err != nil {
		return nil, err
	}
	total := HeaderLen + payloadLen
	if total > MaxMessageLen {
		return nil, ccperr.New(ccperr.Malformed,
			"encoded %s message is %d bytes, exceeds the %d-byte length-byte limit",
			m.Tag(), total, MaxMessageLen)
	}

	buf := make([]byte, total)
	buf[0] = byte(m.Tag())
	buf[1] = byte(total)
	binary.LittleEndian.PutUint32(buf[2:6], m.SessionID())

	body := buf[HeaderLen:]
	switch v := m.(type) {
	case CreateMsg:
		binary.LittleEndian.PutUint32(body[0:4], v.StartSeq)
		copy(body[4:], v.CongAlg)
	case MeasureMsg:
		binary.LittleEndian.PutUint32(body[0:4], v.Ack)
		binary.LittleEndian.PutUint32(body[4:8], v.RttUs)
		binary.LittleEndian.PutUint64(body[8:16], v.Rin)
		binary.LittleEndian.PutUint64(body[16:24], v.Rout)
	case DropMsg:
		copy(body, v.Event)
	case PatternMsg:
		w := bytes.NewBuffer(body[:0:len(body)])
		if err := v.Program.Serialize(w); err != nil {
			return nil, err
		}
	default:
		return nil, ccperr.New(ccperr.Malformed, "unencodable message type %T", m)
	}
	return buf, nil
}

// Decode reads a 6-byte header from buf and dispatches on its tag to
// parse the variant payload. Unknown tags, truncated headers, and
// payloads shorter than the variant requires all fail with Malformed;
// byte-string payloads are validated as UTF-8 before being surfaced.
func Decode(buf []byte) (Msg, error) {
	if len(buf) < HeaderLen {
		return nil, ccperr.New(ccperr.Malformed, "buffer of %d bytes is shorter than the %d-byte header", len(buf), HeaderLen)
	}

	tag := Tag(buf[0])
	length := int(buf[1])
	sid := binary.LittleEndian.Uint32(buf[2:6])

	if length < HeaderLen {
		return nil, ccperr.New(ccperr.Malformed, "header declares length %d, shorter than the %d-byte header itself", length, HeaderLen)
	}
	if length > len(buf) {
		return nil, ccperr.New(ccperr.Malformed, "header declares length %d but buffer only has %d bytes", length, len(buf))
	}
	body := buf[HeaderLen:length]

	switch tag {
	case TagCreate:
		if len(body) < 4 {
			return nil, ccperr.New(ccperr.Malformed, "Create payload truncated: need at least 4 bytes, got %d", len(body))
		}
		startSeq := binary.LittleEndian.Uint32(body[0:4])
		alg := body[4:]
		if !utf8.Valid(alg) {
			return nil, ccperr.New(ccperr.Utf8, "Create cong_alg is not valid UTF-8")
		}
		return CreateMsg{Sid: sid, StartSeq: startSeq, CongAlg: string(alg)}, nil

	case TagMeasure:
		if len(body) < MeasurePayloadLen {
			return nil, ccperr.New(ccperr.Malformed, "Measure payload truncated: need %d bytes, got %d", MeasurePayloadLen, len(body))
		}
		return MeasureMsg{
			Sid:   sid,
			Ack:   binary.LittleEndian.Uint32(body[0:4]),
			RttUs: binary.LittleEndian.Uint32(body[4:8]),
			Rin:   binary.LittleEndian.Uint64(body[8:16]),
			Rout:  binary.LittleEndian.Uint64(body[16:24]),
		}, nil

	case TagDrop:
		if !utf8.Valid(body) {
			return nil, ccperr.New(ccperr.Utf8, "Drop event is not valid UTF-8")
		}
		return DropMsg{Sid: sid, Event: string(body)}, nil

	case TagPattern:
		r := bytes.NewReader(body)
		prog, err := lang.DeserializeProgram(r)
		if err != nil {
			return nil, err
		}
		return PatternMsg{Sid: sid, Program: prog}, nil

	default:
		return nil, ccperr.New(ccperr.Malformed, "unknown message tag %d", buf[0])
	}
}
