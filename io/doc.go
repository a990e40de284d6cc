// Package io provides the devices attached to the LS-8: the console that
// receives PRN and PRA output, and the keyboard that raises interrupts.
package io
