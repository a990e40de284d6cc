// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package memory provides the LS-8 address space.
package memory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ezrec/ls8/translate"
)

var f = translate.From

const (
	RAM_SIZE = 0x100 // Full 8-bit address space.
)

var (
	ErrImageTooLarge = errors.New(f("image too large"))
)

// Ram is a 256 byte memory. Every byte address is valid.
type Ram struct {
	Data [RAM_SIZE]byte
}

// Read the byte at address.
func (ram *Ram) Read(address byte) byte {
	return ram.Data[address]
}

// Write the byte at address.
func (ram *Ram) Write(address byte, value byte) {
	ram.Data[address] = value
}

// Reset zeros the memory.
func (ram *Ram) Reset() {
	clear(ram.Data[:])
}

// Load copies an image into memory starting at address 0.
func (ram *Ram) Load(image []byte) (err error) {
	if len(image) > RAM_SIZE {
		err = ErrImageTooLarge
		return
	}

	copy(ram.Data[:], image)

	return
}

// String returns a hex dump of the memory, 16 bytes per line.
func (ram *Ram) String() string {
	var text strings.Builder

	for row := 0; row < RAM_SIZE; row += 16 {
		fmt.Fprintf(&text, "%02x:", row)
		for _, value := range ram.Data[row : row+16] {
			fmt.Fprintf(&text, " %02x", value)
		}
		text.WriteString("\n")
	}

	return text.String()
}
