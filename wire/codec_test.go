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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccp-project/ccp-agent/ccperr"
	"github.com/ccp-project/ccp-agent/lang"
)

func mustProgram(t *testing.T, src string) lang.Program {
	t.Helper()
	p, err := lang.Compile([]byte(src))
	require.NoError(t, err)
	return p
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		msg  Msg
	}{
		{"create", CreateMsg{Sid: 7, StartSeq: 100, CongAlg: "reno"}},
		{"measure", MeasureMsg{Sid: 7, Ack: 1000, RttUs: 25_000, Rin: 1_000_000, Rout: 900_000}},
		{"drop", DropMsg{Sid: 7, Event: "timeout"}},
		{"pattern", PatternMsg{Sid: 7, Program: mustProgram(t, "(:= cwnd 10) (report)")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := Encode(tt.msg)
			require.NoError(t, err)
			got, err := Decode(buf)
			require.NoError(t, err)
			assert.Equal(t, tt.msg, got)
		})
	}
}

// Exact byte layout for a Measure message, pinned against regressions.
func TestMeasureWireFormat(t *testing.T) {
	msg := MeasureMsg{Sid: 7, Ack: 1000, RttUs: 25_000, Rin: 1_000_000, Rout: 900_000}
	buf, err := Encode(msg)
	require.NoError(t, err)

	require.Len(t, buf, 30)
	assert.Equal(t, []byte{0x01, 0x1e, 0x07, 0x00, 0x00, 0x00}, buf[:6])

	got, err := Decode(buf)
	require.NoError(t, err)
	assert.Equal(t, msg, got)
}

func TestEncodeSelfDescribingLength(t *testing.T) {
	msg := DropMsg{Sid: 1, Event: "dupack"}
	buf, err := Encode(msg)
	require.NoError(t, err)
	assert.Equal(t, len(buf), int(buf[1]))
	assert.LessOrEqual(t, len(buf), MaxMessageLen)
}

func TestEncodeRejectsOverlongMessage(t *testing.T) {
	big := make([]byte, 300)
	for i := range big {
		big[i] = 'a'
	}
	_, err := Encode(DropMsg{Sid: 1, Event: string(big)})
	require.Error(t, err)
	assert.True(t, ccperr.Of(err, ccperr.Malformed))
}

func TestDecodeUnknownTagFails(t *testing.T) {
	buf := []byte{0xff, 0x06, 0x00, 0x00, 0x00, 0x00}
	_, err := Decode(buf)
	require.Error(t, err)
	assert.True(t, ccperr.Of(err, ccperr.Malformed))
}

// A crafted datagram whose length byte is smaller than the header itself
// must fail cleanly rather than panic on the body slice.
func TestDecodeSubHeaderLengthFails(t *testing.T) {
	buf := []byte{0x01, 0x00, 0, 0, 0, 0}
	_, err := Decode(buf)
	require.Error(t, err)
	assert.True(t, ccperr.Of(err, ccperr.Malformed))
}

func TestDecodeTruncatedFails(t *testing.T) {
	msg := MeasureMsg{Sid: 7, Ack: 1000, RttUs: 25_000, Rin: 1_000_000, Rout: 900_000}
	buf, err := Encode(msg)
	require.NoError(t, err)

	for n := 1; n <= len(buf); n++ {
		truncated := buf[:len(buf)-n]
		_, err := Decode(truncated)
		require.Error(t, err, "truncating by %d bytes should fail to decode", n)
	}
}

func TestDecodeInvalidUtf8Fails(t *testing.T) {
	buf := []byte{byte(TagDrop), 7, 0, 0, 0, 0, 0xff}
	_, err := Decode(buf)
	require.Error(t, err)
	assert.True(t, ccperr.Of(err, ccperr.Utf8))
}

func TestDecodeHeaderTooShortFails(t *testing.T) {
	_, err := Decode([]byte{0x00, 0x06, 0x00})
	require.Error(t, err)
	assert.True(t, ccperr.Of(err, ccperr.Malformed))
}
