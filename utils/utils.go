// Copyright (C) 2024, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package utils

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/utils/perms"
	"github.com/onsi/ginkgo/v2/formatter"

	"github.com/ava-labs/vaultvm/consts"
)

// NativeDecimals is the number of decimals of the native token (1 token =
// 10^9 lamports).
const NativeDecimals = 9

var (
	ErrInvalidSize    = errors.New("invalid size")
	ErrInvalidBalance = errors.New("invalid balance")
)

func InitSubDirectory(rootPath string, name string) (string, error) {
	p := filepath.Join(rootPath, name)
	return p, os.MkdirAll(p, perms.ReadWriteExecute)
}

// Outputs to stdout.
//
// e.g.,
//
//	Out("{{green}}{{bold}}hi there %q{{/}}", "aa")
//	Out("{{magenta}}{{bold}}hi therea{{/}} {{cyan}}{{underline}}b{{/}}")
//
// ref.
// https://github.com/onsi/ginkgo/blob/v2.0.0/formatter/formatter.go#L52-L73
func Outf(format string, args ...interface{}) {
	s := formatter.F(format, args...)
	fmt.Fprint(formatter.ColorableStdOut, s)
}

// FormatBalance renders [bal] lamports as a decimal token amount.
func FormatBalance(bal uint64) string {
	const unit = 1_000_000_000
	return fmt.Sprintf("%d.%09d", bal/unit, bal%unit)
}

// ParseBalance parses a decimal token amount with at most [NativeDecimals]
// fractional digits into lamports.
func ParseBalance(bal string) (uint64, error) {
	whole, frac, _ := strings.Cut(strings.TrimSpace(bal), ".")
	if len(frac) > NativeDecimals {
		return 0, fmt.Errorf("%w: more than %d decimals", ErrInvalidBalance, NativeDecimals)
	}
	if whole == "" {
		whole = "0"
	}
	w, err := strconv.ParseUint(whole, 10, 64)
	if err != nil {
		return 0, err
	}
	var f uint64
	if len(frac) > 0 {
		f, err = strconv.ParseUint(frac+strings.Repeat("0", NativeDecimals-len(frac)), 10, 64)
		if err != nil {
			return 0, err
		}
	}
	const unit = 1_000_000_000
	if w > (consts.MaxUint64-f)/unit {
		return 0, fmt.Errorf("%w: overflow", ErrInvalidBalance)
	}
	return w*unit + f, nil
}

// UnixRMilli returns the current unix time in milliseconds, rounded
// down to the nearsest second.
//
// [now] is used as the current unix time in milliseconds if >= 0.
//
// [add] (in ms) is added to the unix time before it is rounded (typically
// used when generating an expiry time with a validity window).
func UnixRMilli(now, add int64) int64 {
	if now < 0 {
		now = time.Now().UnixMilli()
	}
	t := now + add
	return t - t%consts.MillisecondsPerSecond
}

func SaveBytes(filename string, b []byte) error {
	return os.WriteFile(filename, b, perms.ReadWrite)
}

func LoadBytes(filename string, expectedSize int) ([]byte, error) {
	bytes, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if expectedSize != -1 && len(bytes) != expectedSize {
		return nil, ErrInvalidSize
	}
	return bytes, nil
}
