package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

var (
	ErrStationCountMissing     = errors.New("usage: csmasim run <stationCount>")
	ErrStationCountNotNumber   = errors.New("station count is not a number")
	ErrStationCountNotPositive = errors.New("enter positive station count")
	ErrStationCountAboveCPU    = errors.New("station count is greater than CPU count")
)

// parseStationCount validates the positional station count against the
// concurrency budget before any session starts.
func parseStationCount(args []string, maxStations int) (int, error) {
	if len(args) != 1 {
		return 0, ErrStationCountMissing
	}
	n, err := strconv.Atoi(strings.TrimSpace(args[0]))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrStationCountNotNumber, args[0])
	}
	if n > maxStations {
		return 0, fmt.Errorf("%w: %d > %d", ErrStationCountAboveCPU, n, maxStations)
	}
	if n < 1 {
		return 0, ErrStationCountNotPositive
	}
	return n, nil
}
