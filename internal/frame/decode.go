package frame

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	// BinaryFrameSize is the size of a raw PMW3360 frame capture (36 x 36).
	BinaryFrameSize = 1296
)

type Encoding string

const (
	Binary Encoding = "binary"
	Text   Encoding = "text"
)

// TokenError reports a token that is not a hexadecimal integer.
type TokenError struct {
	Line  int
	Token string
	Err   error
}

func (e *TokenError) Error() string {
	return fmt.Sprintf("line %d: invalid hex token %q: %v", e.Line, e.Token, e.Err)
}

func (e *TokenError) Unwrap() error {
	return e.Err
}

// DetectEncoding picks the decoder for a file of the given size: exactly
// BinaryFrameSize bytes is a raw dump, anything else is hex text.
func DetectEncoding(size int64) Encoding {
	if size == BinaryFrameSize {
		return Binary
	}
	return Text
}

// DecodeBinary returns one value per byte.
func DecodeBinary(r io.Reader) ([]int, error) {
	p, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading bytes: %w", err)
	}

	values := make([]int, len(p))
	for i, b := range p {
		values[i] = int(b)
	}
	return values, nil
}

// DecodeText splits the input on whitespace and parses every token as a
// base-16 integer. A leading "0x" is tolerated.
func DecodeText(r io.Reader) ([]int, error) {
	br := bufio.NewReader(r)

	var values []int
	for line := 1; ; line++ {
		text, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("reading line %d: %w", line, err)
		}

		for _, token := range strings.Fields(text) {
			v, pErr := parseHex(token)
			if pErr != nil {
				return nil, &TokenError{Line: line, Token: token, Err: pErr}
			}
			values = append(values, v)
		}

		if err != nil {
			break
		}
	}

	return values, nil
}

func parseHex(token string) (int, error) {
	sign := ""
	digits := token
	if strings.HasPrefix(digits, "-") || strings.HasPrefix(digits, "+") {
		sign, digits = digits[:1], digits[1:]
	}
	if len(digits) > 2 && (digits[:2] == "0x" || digits[:2] == "0X") {
		digits = digits[2:]
	}

	v, err := strconv.ParseInt(sign+digits, 16, 32)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}
