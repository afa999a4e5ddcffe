package statusled

import (
	"errors"
	"strconv"
	"strings"
)

// ErrSyntax is wrapped by every ParseWord error.
var ErrSyntax = errors.New("statusled: invalid status")

// ParseError reports the token of a status string that could not be parsed.
// Token is empty when the input holds no tokens at all.
type ParseError struct {
	Input string
	Token string
}

func (e *ParseError) Error() string {
	if e.Token == "" {
		return "statusled: empty status"
	}
	return "statusled: invalid status " + strconv.Quote(e.Input) + ": unknown token " + strconv.Quote(e.Token)
}

func (e *ParseError) Unwrap() error { return ErrSyntax }

var wordNames = map[string]Word{
	"red":        WordRed,
	"green":      WordGreen,
	"blue":       WordBlue,
	"orange":     WordOrange,
	"teal":       WordTeal,
	"magenta":    WordMagenta,
	"none":       0,
	"shortblink": WordShortBlink,
	"off":        WordOff,
	"solid":      WordSolid,
	"longblink":  WordLongBlink,
}

// ParseWord reads a status word from text. It accepts a number
// ("0x6000", "24576") or names joined by '|', '+', ',' or spaces
// ("teal|shortblink", "RED SOLID"). Names are ORed together, so naming two
// modes yields the bitwise union of their mode bits, exactly like ORing the
// constants in code.
func ParseWord(s string) (Word, error) {
	in := strings.TrimSpace(s)
	if in == "" {
		return 0, &ParseError{Input: s}
	}
	if in[0] >= '0' && in[0] <= '9' {
		n, err := strconv.ParseUint(in, 0, 16)
		if err != nil {
			return 0, &ParseError{Input: s, Token: in}
		}
		return Word(n), nil
	}

	var w Word
	tokens := strings.FieldsFunc(in, func(r rune) bool {
		return r == '|' || r == '+' || r == ',' || r == ' ' || r == '\t'
	})
	if len(tokens) == 0 {
		return 0, &ParseError{Input: s}
	}
	for _, tok := range tokens {
		v, ok := wordNames[strings.ToLower(tok)]
		if !ok {
			return 0, &ParseError{Input: s, Token: tok}
		}
		w |= v
	}
	return w, nil
}

// FormatWord renders w as a hex literal followed by its decoded status,
// e.g. "0x6000 teal|shortblink".
func FormatWord(w Word) string {
	buf := make([]byte, 0, 32)
	buf = append(buf, "0x"...)
	hex := strconv.FormatUint(uint64(w), 16)
	for i := len(hex); i < 4; i++ {
		buf = append(buf, '0')
	}
	buf = append(buf, hex...)
	buf = append(buf, ' ')
	buf = append(buf, Decode(w).String()...)
	return string(buf)
}
