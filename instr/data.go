package instr

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrDataByteOverflow is returned when a numeric data-directive argument
// does not fit in 8 bits.
var ErrDataByteOverflow = errors.New("data byte value out of range")

// DataArg is one argument to a `db` directive: either a run of text,
// rendered single-quoted, or a single byte value, rendered as two-digit hex
// with an `h` suffix.
type DataArg struct {
	text    string
	isText  bool
	byteVal byte
}

// Text returns a textual data argument, rendered single-quoted.
func Text(s string) DataArg { return DataArg{text: s, isText: true} }

// Byte returns a numeric data argument. It returns ErrDataByteOverflow if v
// does not fit in 8 bits.
func Byte(v int) (DataArg, error) {
	if v < 0 || v > MaxDataByte {
		return DataArg{}, errors.Wrapf(ErrDataByteOverflow, "data byte %d", v)
	}
	return DataArg{byteVal: byte(v)}, nil
}

// MustByte is like Byte but panics on overflow. Reserved for constants
// known in advance to be in range (e.g. '$' or a newline byte).
func MustByte(v int) DataArg {
	a, err := Byte(v)
	if err != nil {
		panic(err)
	}
	return a
}

func (a DataArg) String() string {
	if a.isText {
		return "'" + a.text + "'"
	}
	hex := strconv.FormatUint(uint64(a.byteVal), 16)
	if len(hex) < 2 {
		hex = "0" + hex
	}
	return hex + "h"
}

// Data is a `db` directive: an optional name and a sequence of byte-valued
// arguments.
type Data struct {
	Name string
	Op   string
	Args []DataArg
}

// NewData builds a data directive. A nil/empty args list renders as a
// single uninitialized byte (`db ?`), matching the placeholder the writer
// emits at the top of the data segment.
func NewData(name string, args ...DataArg) Data {
	return Data{Name: name, Op: "db", Args: args}
}

func (d Data) String() string {
	args := "?"
	if len(d.Args) > 0 {
		parts := make([]string, len(d.Args))
		for i, a := range d.Args {
			parts[i] = a.String()
		}
		args = strings.Join(parts, ", ")
	}
	line := d.Op + " " + args
	if d.Name != "" {
		line = d.Name + " " + line
	}
	return line
}
