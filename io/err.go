package io

import (
	"errors"

	"github.com/ezrec/ls8/translate"
)

var f = translate.From

var (
	// Console errors
	ErrNoOutput = errors.New(f("no console output"))
)
