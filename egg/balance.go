package egg

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
)

// CheckBalance verifies that every '{' has a matching '}', ignoring quoted
// strings and // comments.
func CheckBalance(r io.Reader) error {
	br := bufio.NewReader(r)
	depth, line := 0, 1
	inString, inComment, escaped := false, false, false
	var prev rune
	for {
		c, _, err := br.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		switch {
		case c == '\n':
			line++
			inComment = false
		case inComment:
		case inString:
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
		case c == '"':
			inString = true
		case c == '/' && prev == '/':
			inComment = true
		case c == '{':
			depth++
		case c == '}':
			depth--
			if depth < 0 {
				return errors.Errorf("line %d: unexpected '}'", line)
			}
		}
		prev = c
	}
	if inString {
		return errors.New("unterminated string")
	}
	if depth != 0 {
		return errors.Errorf("%d unclosed block(s) at end of input", depth)
	}
	return nil
}
