package domain

import "errors"

var (
	// ErrData marks malformed or insufficient historical data: gaps, duplicate years,
	// missing year lookups and out-of-range simulation windows.
	ErrData = errors.New("data error")

	// ErrConfig marks an invalid simulation configuration, including a horizon that no
	// start year in the available history can satisfy.
	ErrConfig = errors.New("config error")
)
