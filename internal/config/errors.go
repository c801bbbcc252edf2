package config

import "errors"

// ErrConfig marks an invalid configuration detected at startup.
var ErrConfig = errors.New("config: invalid configuration")
