package main

import (
	"errors"
	"testing"

	"github.com/danmuck/csmacd/internal/testutil/testlog"
)

func TestParseStationCount(t *testing.T) {
	testlog.Start(t)
	cases := []struct {
		args []string
		want int
		err  error
	}{
		{[]string{"3"}, 3, nil},
		{[]string{" 1 "}, 1, nil},
		{[]string{"4"}, 4, nil},
		{nil, 0, ErrStationCountMissing},
		{[]string{"1", "2"}, 0, ErrStationCountMissing},
		{[]string{"three"}, 0, ErrStationCountNotNumber},
		{[]string{"0"}, 0, ErrStationCountNotPositive},
		{[]string{"-2"}, 0, ErrStationCountNotPositive},
		{[]string{"5"}, 0, ErrStationCountAboveCPU},
	}
	for _, tc := range cases {
		got, err := parseStationCount(tc.args, 4)
		if tc.err != nil {
			if !errors.Is(err, tc.err) {
				t.Fatalf("args=%v expected %v, got %v", tc.args, tc.err, err)
			}
			continue
		}
		if err != nil || got != tc.want {
			t.Fatalf("args=%v got=%d err=%v", tc.args, got, err)
		}
	}
}
