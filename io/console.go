package io

import (
	"io"
	"strconv"
)

// Console is the output sink for PRN and PRA. Each call writes one unit
// of output to Output.
type Console struct {
	Output io.Writer
}

// Number writes the decimal value followed by a newline.
func (con *Console) Number(value byte) (err error) {
	if con.Output == nil {
		err = ErrNoOutput
		return
	}

	_, err = io.WriteString(con.Output, strconv.Itoa(int(value))+"\n")
	return
}

// Character writes the value as a single byte.
func (con *Console) Character(value byte) (err error) {
	if con.Output == nil {
		err = ErrNoOutput
		return
	}

	_, err = con.Output.Write([]byte{value})
	return
}
