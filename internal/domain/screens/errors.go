package screens

import "errors"

var ErrUnknownScreen = errors.New("unknown screen")
