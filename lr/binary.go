package lr

import (
	"errors"
	"fmt"

	"github.com/dekarrin/rezi"
	"github.com/npillmayer/lalrgen/lr/sparse"
)

// This file contains the binary encoding of parsing tables. A decoded table
// carries symbol and rule information and may drive a parser without the
// grammar it has been built from.

const tableFormatVersion = 1

// ErrCorruptTable is wrapped by decoding errors for entries or rules which
// refer to states, rules or symbols outside of the table.
var ErrCorruptTable = errors.New("parsing table: corrupt data")

// MarshalBinary encodes a parsing table. It is part of encoding.BinaryMarshaler.
func (t *ParsingTable) MarshalBinary() ([]byte, error) {
	var data []byte
	data = append(data, rezi.EncInt(tableFormatVersion)...)
	data = append(data, rezi.EncString(t.name)...)
	data = append(data, rezi.EncInt(t.conflicts)...)
	data = append(data, rezi.EncInt(len(t.symbols))...)
	for _, s := range t.symbols {
		data = append(data, rezi.EncBinary(s)...)
	}
	data = append(data, rezi.EncInt(len(t.rules))...)
	for _, r := range t.rules {
		data = append(data, rezi.EncBinary(r)...)
	}
	data = append(data, rezi.EncInt(t.matrix.M())...)
	data = append(data, rezi.EncInt(t.matrix.ValueCount())...)
	t.matrix.Each(func(i, j int, a, b int32) {
		data = append(data, rezi.EncInt(i)...)
		data = append(data, rezi.EncInt(j)...)
		data = append(data, rezi.EncInt(int(a))...)
		data = append(data, rezi.EncInt(int(b))...)
	})
	return data, nil
}

// UnmarshalBinary decodes a parsing table. It is part of encoding.BinaryUnmarshaler.
func (t *ParsingTable) UnmarshalBinary(data []byte) error {
	dec := decoder{data: data}
	if v := dec.readInt("version"); dec.err == nil && v != tableFormatVersion {
		return fmt.Errorf("parsing table: unsupported format version %d", v)
	}
	name := dec.readString("name")
	conflicts := dec.readInt("conflict count")
	n := dec.readInt("symbol count")
	var symbols []symbolInfo
	for k := 0; k < n && dec.err == nil; k++ {
		var s symbolInfo
		dec.readBinary("symbol", &s)
		symbols = append(symbols, s)
	}
	n = dec.readInt("rule count")
	var rules []ruleInfo
	for k := 0; k < n && dec.err == nil; k++ {
		var r ruleInfo
		dec.readBinary("rule", &r)
		rules = append(rules, r)
	}
	states := dec.readInt("state count")
	n = dec.readInt("entry count")
	if dec.err != nil {
		return dec.err
	}
	if states < 0 {
		return fmt.Errorf("%w: negative state count", ErrCorruptTable)
	}
	for k, r := range rules {
		if r.lhs < 0 || r.lhs >= len(symbols) || symbols[r.lhs].terminal {
			return fmt.Errorf("%w: rule %d has invalid LHS %d", ErrCorruptTable, k, r.lhs)
		}
		for _, A := range r.rhs {
			if A < 0 || A >= len(symbols) {
				return fmt.Errorf("%w: rule %d refers to symbol %d", ErrCorruptTable, k, A)
			}
		}
	}
	matrix := sparse.NewIntMatrix(states, len(symbols), sparse.DefaultNullValue)
	for k := 0; k < n && dec.err == nil; k++ {
		i, j := dec.readInt("row"), dec.readInt("column")
		a, b := dec.readInt("value"), dec.readInt("shadow value")
		if dec.err != nil {
			break
		}
		if i < 0 || i >= states || j < 0 || j >= len(symbols) {
			return fmt.Errorf("%w: entry (%d,%d) out of range", ErrCorruptTable, i, j)
		}
		for _, v := range []int{a, b} {
			if err := checkEntry(v, states, len(rules)); err != nil {
				return fmt.Errorf("%w: entry (%d,%d): %v", ErrCorruptTable, i, j, err)
			}
		}
		matrix.SetPair(i, j, int32(a), int32(b))
	}
	if dec.err != nil {
		return dec.err
	}
	t.name, t.conflicts = name, conflicts
	t.symbols, t.rules, t.matrix = symbols, rules, matrix
	t.index()
	return nil
}

// checkEntry verifies that an encoded action refers to an existing state or rule.
func checkEntry(v int, states, rules int) error {
	if int32(v) == sparse.DefaultNullValue {
		return nil
	}
	target := v >> actionBits
	switch at := ActionType(v & (1<<actionBits - 1)); at {
	case ShiftAction, GotoAction:
		if target < 0 || target >= states {
			return fmt.Errorf("%s to unknown state %d", at, target)
		}
	case ReduceAction:
		if target < 0 || target >= rules {
			return fmt.Errorf("reduce by unknown rule %d", target)
		}
	case AcceptAction:
	default:
		return fmt.Errorf("unknown action type %d", at)
	}
	return nil
}

func (s symbolInfo) MarshalBinary() ([]byte, error) {
	var data []byte
	data = append(data, rezi.EncString(s.name)...)
	data = append(data, rezi.EncBool(s.terminal)...)
	data = append(data, rezi.EncInt(s.tokType)...)
	data = append(data, rezi.EncString(s.lexeme)...)
	return data, nil
}

func (s *symbolInfo) UnmarshalBinary(data []byte) error {
	dec := decoder{data: data}
	s.name = dec.readString("symbol name")
	s.terminal = dec.readBool("terminal flag")
	s.tokType = dec.readInt("token type")
	s.lexeme = dec.readString("lexeme")
	return dec.err
}

func (r ruleInfo) MarshalBinary() ([]byte, error) {
	var data []byte
	data = append(data, rezi.EncInt(r.lhs)...)
	data = append(data, rezi.EncInt(len(r.rhs))...)
	for _, A := range r.rhs {
		data = append(data, rezi.EncInt(A)...)
	}
	return data, nil
}

func (r *ruleInfo) UnmarshalBinary(data []byte) error {
	dec := decoder{data: data}
	r.lhs = dec.readInt("rule LHS")
	n := dec.readInt("rule length")
	r.rhs = nil
	for k := 0; k < n && dec.err == nil; k++ {
		r.rhs = append(r.rhs, dec.readInt("rule RHS"))
	}
	return dec.err
}

// decoder consumes rezi-encoded values. After the first error all further
// reads are no-ops and return zero values.
type decoder struct {
	data []byte
	err  error
}

func (d *decoder) fail(what string, err error) {
	d.err = fmt.Errorf("parsing table: decoding %s: %w", what, err)
}

func (d *decoder) readInt(what string) int {
	if d.err != nil {
		return 0
	}
	v, n, err := rezi.DecInt(d.data)
	if err != nil {
		d.fail(what, err)
		return 0
	}
	d.data = d.data[n:]
	return v
}

func (d *decoder) readString(what string) string {
	if d.err != nil {
		return ""
	}
	v, n, err := rezi.DecString(d.data)
	if err != nil {
		d.fail(what, err)
		return ""
	}
	d.data = d.data[n:]
	return v
}

func (d *decoder) readBool(what string) bool {
	if d.err != nil {
		return false
	}
	v, n, err := rezi.DecBool(d.data)
	if err != nil {
		d.fail(what, err)
		return false
	}
	d.data = d.data[n:]
	return v
}

func (d *decoder) readBinary(what string, b interface{ UnmarshalBinary([]byte) error }) {
	if d.err != nil {
		return
	}
	n, err := rezi.DecBinary(d.data, b)
	if err != nil {
		d.fail(what, err)
		return
	}
	d.data = d.data[n:]
}
