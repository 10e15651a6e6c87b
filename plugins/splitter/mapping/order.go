package mapping

import (
	"cmp"
	"math"
	"strconv"
	"strings"
)

// 与常见表格库默认一致的缺失值记号；缺失值在排序中置后，在去重时视为同一值。
var missingTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// isMissing 按记号全文匹配，不裁剪空白：" NA" 是合法取值。
func isMissing(v string) bool {
	_, ok := missingTokens[v]
	return ok
}

func parseNumber(v string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// naturalOrder 依据整列取值决定比较方式：
// 全部非缺失值均可解析为数字时按数值比较，否则按字节序比较；缺失值恒置后。
// 数值相等但文本不同（如 "1" 与 "1.0"）时回退到字节序，保证全序。
func naturalOrder(values []string) func(a, b string) int {
	numeric := true
	for _, v := range values {
		if isMissing(v) {
			continue
		}
		if _, ok := parseNumber(v); !ok {
			numeric = false
			break
		}
	}
	return func(a, b string) int {
		ma, mb := isMissing(a), isMissing(b)
		switch {
		case ma && mb:
			return 0
		case ma:
			return 1
		case mb:
			return -1
		}
		if numeric {
			fa, _ := parseNumber(a)
			fb, _ := parseNumber(b)
			if c := cmp.Compare(fa, fb); c != 0 {
				return c
			}
		}
		return strings.Compare(a, b)
	}
}

// distinctKey 将所有缺失值折叠为同一键。
func distinctKey(v string) string {
	if isMissing(v) {
		return "\x00missing"
	}
	return v
}
