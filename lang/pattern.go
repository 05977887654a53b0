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

package lang

import (
	"encoding/binary"
	"io"

	"github.com/GiterLab/crc16"
	"github.com/ccp-project/ccp-agent/ccperr"
)

// OperandKind tags how an Instruction's operand (or destination) should
// be read: a literal value, a named register, the implicit return
// register, or (destinations only) nothing at all.
type OperandKind uint8

const (
	OperandImmediate OperandKind = iota
	OperandRegister
	OperandReturnRegister
	OperandNone
)

// Operand is a 9-byte (tag, value) pair: one bytecode slot wide enough
// for either an immediate 64-bit value or a register index.
type Operand struct {
	Kind  OperandKind
	Value uint64
}

const operandLen = 1 + 8

func (o Operand) write(buf []byte) {
	buf[0] = byte(o.Kind)
	binary.LittleEndian.PutUint64(buf[1:9], o.Value)
}

func readOperand(buf []byte) (Operand, error) {
	kind := OperandKind(buf[0])
	if kind > OperandNone {
		return Operand{}, ccperr.New(ccperr.Malformed, "invalid operand tag %d", buf[0])
	}
	return Operand{Kind: kind, Value: binary.LittleEndian.Uint64(buf[1:9])}, nil
}

// Instruction is one compiled step of a control program: apply Op to
// Left and Right, and (unless Dst.Kind is OperandNone, as for Reset)
// write the result to Dst.
type Instruction struct {
	Op    Op
	Dst   Operand
	Left  Operand
	Right Operand
}

const instructionLen = 1 + 3*operandLen

func (ins Instruction) write(buf []byte) {
	buf[0] = byte(ins.Op)
	ins.Dst.write(buf[1:])
	ins.Left.write(buf[1+operandLen:])
	ins.Right.write(buf[1+2*operandLen:])
}

func readInstruction(buf []byte) (Instruction, error) {
	op := Op(buf[0])
	if op < Add || op > Reset {
		return Instruction{}, ccperr.New(ccperr.Malformed, "invalid opcode %d", buf[0])
	}
	dst, err := readOperand(buf[1:])
	if err != nil {
		return Instruction{}, err
	}
	left, err := readOperand(buf[1+operandLen:])
	if err != nil {
		return Instruction{}, err
	}
	right, err := readOperand(buf[1+2*operandLen:])
	if err != nil {
		return Instruction{}, err
	}
	return Instruction{Op: op, Dst: dst, Left: left, Right: right}, nil
}

// RegisterDef is one entry of the Def preamble: a register's name (for
// diagnostics; the datapath addresses registers by index) and its
// initial value.
type RegisterDef struct {
	Name    string
	Initial uint64
}

// Program is the compiled form of a control program: the register table
// a Compile pass built, followed by its instruction stream. It satisfies
// the len_bytes/serialize/deserialize contract spec §4.2.4 imposes on
// the Pattern message payload.
type Program struct {
	Registers    []RegisterDef
	Instructions []Instruction
}

const crcLen = 2

// LenBytes returns the exact byte length Serialize will write, which
// must fit a uint8 since it becomes part of a 255-byte-capped message
// (spec Design Notes, "Length byte").
func (p Program) LenBytes() int {
	n := 1 // register count
	for _, r := range p.Registers {
		n += 1 + len(r.Name) + 8
	}
	n += len(p.Instructions) * instructionLen
	n += crcLen
	return n
}

// Serialize writes exactly LenBytes() bytes: the register table, the
// instruction stream, then a CRC16/MODBUS trailer (github.com/GiterLab/crc16)
// over everything preceding it. The CRC trailer is part of the Pattern
// payload on the wire and is counted in LenBytes; DeserializeProgram
// rejects a program whose trailer does not match its body.
func (p Program) Serialize(w io.Writer) error {
	total := p.LenBytes()
	if total > 0xff {
		return ccperr.New(ccperr.Malformed, "compiled program is %d bytes, exceeds the 255-byte message cap", total)
	}
	buf := make([]byte, total-crcLen)

	if len(p.Registers) > 0xff {
		return ccperr.New(ccperr.Malformed, "program declares %d registers, exceeds 255", len(p.Registers))
	}
	buf[0] = byte(len(p.Registers))
	off := 1
	for _, r := range p.Registers {
		if len(r.Name) > 0xff {
			return ccperr.New(ccperr.Malformed, "register name %q exceeds 255 bytes", r.Name)
		}
		buf[off] = byte(len(r.Name))
		off++
		off += copy(buf[off:], r.Name)
		binary.LittleEndian.PutUint64(buf[off:off+8], r.Initial)
		off += 8
	}
	for _, ins := range p.Instructions {
		ins.write(buf[off : off+instructionLen])
		off += instructionLen
	}

	table := crc16.MakeTable(crc16.CRC16_MODBUS)
	h := crc16.New(table)
	h.Write(buf)
	sum := h.Sum16()

	if _, err := w.Write(buf); err != nil {
		return ccperr.Wrap(ccperr.Io, err, "writing program body")
	}
	var crcBuf [crcLen]byte
	binary.LittleEndian.PutUint16(crcBuf[:], sum)
	if _, err := w.Write(crcBuf[:]); err != nil {
		return ccperr.Wrap(ccperr.Io, err, "writing program crc")
	}
	return nil
}

// DeserializeProgram is the exact inverse of Program.Serialize.
func DeserializeProgram(r io.Reader) (Program, error) {
	all, err := io.ReadAll(r)
	if err != nil {
		return Program{}, ccperr.Wrap(ccperr.Io, err, "reading program")
	}
	if len(all) < 1+crcLen {
		return Program{}, ccperr.New(ccperr.Malformed, "program buffer of %d bytes is too short", len(all))
	}

	body := all[:len(all)-crcLen]
	wantCRC := binary.LittleEndian.Uint16(all[len(all)-crcLen:])
	table := crc16.MakeTable(crc16.CRC16_MODBUS)
	h := crc16.New(table)
	h.Write(body)
	if h.Sum16() != wantCRC {
		return Program{}, ccperr.New(ccperr.Malformed, "program crc mismatch: got %04x want %04x", h.Sum16(), wantCRC)
	}

	regCount := int(body[0])
	off := 1
	regs := make([]RegisterDef, 0, regCount)
	for i := 0; i < regCount; i++ {
		if off >= len(body) {
			return Program{}, ccperr.New(ccperr.Malformed, "program truncated in register table")
		}
		nameLen := int(body[off])
		off++
		if off+nameLen+8 > len(body) {
			return Program{}, ccperr.New(ccperr.Malformed, "program truncated in register table")
		}
		name := string(body[off : off+nameLen])
		off += nameLen
		initial := binary.LittleEndian.Uint64(body[off : off+8])
		off += 8
		regs = append(regs, RegisterDef{Name: name, Initial: initial})
	}

	remaining := len(body) - off
	if remaining%instructionLen != 0 {
		return Program{}, ccperr.New(ccperr.Malformed, "program instruction stream is not a whole number of instructions")
	}
	instrs := make([]Instruction, 0, remaining/instructionLen)
	for off < len(body) {
		ins, err := readInstruction(body[off : off+instructionLen])
		if err != nil {
			return Program{}, err
		}
		instrs = append(instrs, ins)
		off += instructionLen
	}

	return Program{Registers: regs, Instructions: instrs}, nil
}
