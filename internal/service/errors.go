package service

import "errors"

// ErrNoData means the provider failed and nothing usable is cached.
var ErrNoData = errors.New("no data available")
