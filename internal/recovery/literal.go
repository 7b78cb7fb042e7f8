// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package recovery

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"go.yaml.in/yaml/v3"
)

var errNotLiteral = errors.New("not a Python literal")

// EvalLiteral evaluates a Python literal of the kind a model produces when it
// prints a dict, list or tuple with repr(): single- or double-quoted strings,
// numbers, True, False, None, and nested [] / () / {} containers. Strings are
// first rewritten as JSON strings with their Python escapes decoded and
// tuples become lists; the result is then read as YAML flow syntax, which
// shares the remaining grammar, and checked so that YAML-only forms (block
// mappings, anchors, bare words) are rejected.
func EvalLiteral(s string) (any, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, errNotLiteral
	}
	flow, err := toFlow(s)
	if err != nil {
		return nil, err
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(flow), &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", errNotLiteral, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, errNotLiteral
	}
	return literalValue(doc.Content[0])
}

func literalValue(n *yaml.Node) (any, error) {
	switch n.Kind {
	case yaml.MappingNode:
		if n.Style&yaml.FlowStyle == 0 {
			return nil, fmt.Errorf("%w: block mapping", errNotLiteral)
		}
		m := make(map[string]any, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, err := literalValue(n.Content[i])
			if err != nil {
				return nil, err
			}
			v, err := literalValue(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			m[fmt.Sprint(k)] = v
		}
		return m, nil

	case yaml.SequenceNode:
		if n.Style&yaml.FlowStyle == 0 {
			return nil, fmt.Errorf("%w: block sequence", errNotLiteral)
		}
		list := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := literalValue(c)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil

	case yaml.ScalarNode:
		if n.Style&(yaml.SingleQuotedStyle|yaml.DoubleQuotedStyle) != 0 {
			return n.Value, nil
		}
		return plainScalar(n)

	default:
		return nil, fmt.Errorf("%w: unsupported node", errNotLiteral)
	}
}

// plainScalar resolves an unquoted scalar. Only Python keywords and numbers
// are accepted; anything else would be a name, which literal_eval rejects.
func plainScalar(n *yaml.Node) (any, error) {
	switch n.Value {
	case "None":
		return nil, nil
	case "True":
		return true, nil
	case "False":
		return false, nil
	}

	var v any
	if err := n.Decode(&v); err != nil {
		return nil, fmt.Errorf("%w: %v", errNotLiteral, err)
	}
	switch t := v.(type) {
	case int:
		return float64(t), nil
	case float64:
		return t, nil
	default:
		return nil, fmt.Errorf("%w: bare word %q", errNotLiteral, n.Value)
	}
}

// toFlow rewrites every Python string literal in s as a JSON string and every
// tuple as a list. Text outside string literals is otherwise copied as-is.
func toFlow(s string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(s); {
		switch c := s[i]; c {
		case '\'', '"':
			text, n, err := pyString(s[i:])
			if err != nil {
				return "", err
			}
			quoted, err := json.Marshal(text)
			if err != nil {
				return "", fmt.Errorf("%w: %v", errNotLiteral, err)
			}
			b.Write(quoted)
			i += n
		case '(':
			b.WriteByte('[')
			i++
		case ')':
			b.WriteByte(']')
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String(), nil
}

// pyString decodes the quoted string at the start of s and returns its value
// and the number of bytes consumed. Supported escapes: \\ \' \" \a \b \f
// \n \r \t \v, octal \ooo, \xhh, \uXXXX, \UXXXXXXXX, and a backslash before
// a newline. Any other backslash is kept, as Python does.
func pyString(s string) (string, int, error) {
	quote := s[0]
	var b strings.Builder
	for i := 1; i < len(s); {
		c := s[i]
		switch {
		case c == quote:
			return b.String(), i + 1, nil
		case c == '\n':
			return "", 0, fmt.Errorf("%w: newline in string", errNotLiteral)
		case c != '\\':
			b.WriteByte(c)
			i++
			continue
		}

		if i+1 >= len(s) {
			break
		}
		e := s[i+1]
		i += 2
		switch e {
		case '\\', '\'', '"':
			b.WriteByte(e)
		case 'a':
			b.WriteByte('\a')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case 'v':
			b.WriteByte('\v')
		case '\n':
		case '0', '1', '2', '3', '4', '5', '6', '7':
			j := i
			for j < len(s) && j < i+2 && s[j] >= '0' && s[j] <= '7' {
				j++
			}
			v, _ := strconv.ParseUint(s[i-1:j], 8, 32)
			b.WriteRune(rune(v))
			i = j
		case 'x', 'u', 'U':
			width := 2
			switch e {
			case 'u':
				width = 4
			case 'U':
				width = 8
			}
			if i+width > len(s) {
				return "", 0, fmt.Errorf("%w: truncated \\%c escape", errNotLiteral, e)
			}
			v, err := strconv.ParseUint(s[i:i+width], 16, 32)
			if err != nil || !utf8.ValidRune(rune(v)) {
				return "", 0, fmt.Errorf("%w: bad \\%c escape", errNotLiteral, e)
			}
			b.WriteRune(rune(v))
			i += width
		default:
			b.WriteByte('\\')
			b.WriteByte(e)
		}
	}
	return "", 0, fmt.Errorf("%w: unterminated string", errNotLiteral)
}
