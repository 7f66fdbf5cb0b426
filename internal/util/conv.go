package util

import (
	"strconv"
)

// MustParseUint 路径参数里的数字 ID。非法输入返回 0，
// 交给上层的 not found 分支兜底。
func MustParseUint(s string) uint {
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0
	}
	return uint(n)
}
