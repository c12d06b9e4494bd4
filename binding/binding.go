package binding

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var exprPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// Interpolate 将文本中的 ${path.to.value} 替换为 data 中的值。
// 支持 ${path|fallback}：路径不存在时使用 fallback；没有 fallback 时保留原占位符。
func Interpolate(text string, data any) string {
	out, _ := interpolate(text, data)
	return out
}

// InterpolateStrict 与 Interpolate 相同，但存在无法解析且无 fallback 的占位符时返回错误。
func InterpolateStrict(text string, data any) (string, error) {
	out, missing := interpolate(text, data)
	if len(missing) > 0 {
		return out, fmt.Errorf("未找到绑定数据: %s", strings.Join(missing, ", "))
	}
	return out, nil
}

func interpolate(text string, data any) (string, []string) {
	seen := map[string]bool{}
	out := exprPattern.ReplaceAllStringFunc(text, func(match string) string {
		groups := exprPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		path, fallback, hasFallback := strings.Cut(groups[1], "|")
		path = strings.TrimSpace(path)
		if path == "" {
			return match
		}
		if val, ok := Resolve(data, path); ok && val != nil {
			return format(val)
		}
		if hasFallback {
			return fallback
		}
		seen[path] = true
		return match
	})
	missing := make([]string, 0, len(seen))
	for p := range seen {
		missing = append(missing, p)
	}
	sort.Strings(missing)
	return out, missing
}

// format 让 JSON 解出的整数型 float64 不带小数点输出。
func format(v any) string {
	if f, ok := v.(float64); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

// Resolve 按 a.b[0].c 形式的路径取值。
func Resolve(data any, path string) (any, bool) {
	if data == nil {
		return nil, false
	}
	current := data
	segments := strings.Split(path, ".")
	for _, segment := range segments {
		name, indexes := parseSegment(segment)
		if name != "" {
			var ok bool
			current, ok = descendMap(current, name)
			if !ok {
				return nil, false
			}
		}
		for _, idxStr := range indexes {
			idx, err := strconv.Atoi(idxStr)
			if err != nil {
				return nil, false
			}
			var ok bool
			current, ok = descendArray(current, idx)
			if !ok {
				return nil, false
			}
		}
	}
	return current, true
}

// List 按路径取出数组；路径不存在或不是数组时返回错误。
func List(data any, path string) ([]any, error) {
	val, ok := Resolve(data, path)
	if !ok {
		return nil, fmt.Errorf("未找到绑定数据: %s", path)
	}
	items, ok := val.([]any)
	if !ok {
		return nil, fmt.Errorf("绑定数据 %s 不是数组 (%T)", path, val)
	}
	return items, nil
}

// With 返回在 data 顶层之上追加 name=value 的新作用域，不修改 data。
func With(data any, name string, value any) map[string]any {
	scope := map[string]any{}
	if m, ok := data.(map[string]any); ok {
		for k, v := range m {
			scope[k] = v
		}
	}
	scope[name] = value
	return scope
}

func parseSegment(segment string) (string, []string) {
	name := segment
	indexes := []string{}
	if i := strings.Index(segment, "["); i != -1 {
		name = segment[:i]
		rest := segment[i:]
		for len(rest) > 0 {
			if rest[0] != '[' {
				break
			}
			end := strings.IndexByte(rest, ']')
			if end == -1 {
				break
			}
			indexes = append(indexes, rest[1:end])
			rest = rest[end+1:]
		}
	}
	return name, indexes
}

func descendMap(current any, key string) (any, bool) {
	switch c := current.(type) {
	case map[string]any:
		val, ok := c[key]
		return val, ok
	case map[string]string:
		val, ok := c[key]
		return val, ok
	default:
		return nil, false
	}
}

func descendArray(current any, idx int) (any, bool) {
	switch c := current.(type) {
	case []any:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	case []string:
		if idx < 0 || idx >= len(c) {
			return nil, false
		}
		return c[idx], true
	default:
		return nil, false
	}
}
