// Package strvals parses the `key=value,key=[a,b]` lines used by the output
// flags.
package strvals

import (
	"fmt"
	"strings"
)

// Token is a single key and value of a line.
type Token struct {
	Key, Value string
	Inside     rune // shows whether it's inside a given collection, currently [ means it's an array
}

// Parse splits a `key=value,key=[a,b]` configuration line.
func Parse(line string) ([]Token, error) {
	var tokens []Token
	for line != "" {
		eq := strings.IndexByte(line, '=')
		if comma := strings.IndexByte(line, ','); eq < 0 || (comma >= 0 && comma < eq) {
			key := line
			if comma >= 0 {
				key = line[:comma]
			}
			return nil, fmt.Errorf("key `%s` with no value", key)
		}

		t := Token{Key: line[:eq]}
		line = line[eq+1:]
		if strings.HasPrefix(line, "[") {
			end := strings.IndexByte(line, ']')
			if end < 0 {
				return nil, fmt.Errorf("key `%s` has an unterminated array value `%s`", t.Key, line)
			}
			t.Value, t.Inside = line[1:end], '['
			line = line[end+1:]
		} else {
			end := strings.IndexByte(line, ',')
			if end < 0 {
				end = len(line)
			}
			t.Value = line[:end]
			line = line[end:]
		}
		if t.Value == "" && line == "" && t.Inside == 0 {
			return nil, fmt.Errorf("key `%s=` with no value", t.Key)
		}
		tokens = append(tokens, t)

		if line == "" {
			break
		}
		if line[0] != ',' {
			return nil, fmt.Errorf("unexpected `%s` after the value of key `%s`", line, t.Key)
		}
		line = line[1:]
		if line == "" {
			return nil, fmt.Errorf("trailing comma after key `%s`", t.Key)
		}
	}
	return tokens, nil
}
