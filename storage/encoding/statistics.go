package encoding

import (
	"github.com/wzqhbustb/cole/storage/format"
)

// Page statistics are computed by linear scan at encode time. Numeric
// bounds are widened to int64 regardless of the source width; string
// pages carry no bounds in this version.

// ComputeInt32Stats returns min/max stats for a page of int32 values
func ComputeInt32Stats(values []int32) format.PageStats {
	if len(values) == 0 {
		return format.PageStats{}
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return format.IntStats(int64(min), int64(max))
}

// ComputeInt64Stats returns min/max stats for a page of int64 values
func ComputeInt64Stats(values []int64) format.PageStats {
	if len(values) == 0 {
		return format.PageStats{}
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return format.IntStats(min, max)
}

// ComputeStringStats returns stats for a string page. Min and max are
// omitted; the distinct estimate is filled in by the dictionary codec
// when that encoding is in use.
func ComputeStringStats(values []string) format.PageStats {
	return format.PageStats{}
}
