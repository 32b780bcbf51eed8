package extract

import (
	"bytes"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Content stream operands. Numbers are float64, booleans bool and null nil.
type (
	pdfName    string
	pdfString  string
	pdfKeyword string
	pdfArray   []any
	pdfDict    map[string]any
)

// contentScanner tokenizes a decoded content stream, inline image data
// included.
type contentScanner struct {
	data []byte
	pos  int
}

func isWhite(c byte) bool {
	switch c {
	case 0, '\t', '\n', '\f', '\r', ' ':
		return true
	}
	return false
}

func isDelim(c byte) bool {
	switch c {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func (s *contentScanner) skipSpace() {
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		switch {
		case isWhite(c):
			s.pos++
		case c == '%':
			for s.pos < len(s.data) && s.data[s.pos] != '\n' && s.data[s.pos] != '\r' {
				s.pos++
			}
		default:
			return
		}
	}
}

// token returns the next lexical token or io.EOF.
func (s *contentScanner) token() (any, error) {
	s.skipSpace()
	if s.pos >= len(s.data) {
		return nil, io.EOF
	}
	c := s.data[s.pos]
	switch {
	case c == '(':
		return s.literalString()
	case c == '<':
		if s.pos+1 < len(s.data) && s.data[s.pos+1] == '<' {
			s.pos += 2
			return pdfKeyword("<<"), nil
		}
		return s.hexString()
	case c == '>':
		if s.pos+1 < len(s.data) && s.data[s.pos+1] == '>' {
			s.pos += 2
			return pdfKeyword(">>"), nil
		}
		return nil, fmt.Errorf("unexpected '>' at offset %d", s.pos)
	case c == '[' || c == ']' || c == '{' || c == '}':
		s.pos++
		return pdfKeyword([]byte{c}), nil
	case c == '/':
		s.pos++
		return pdfName(s.name()), nil
	case c == ')':
		return nil, fmt.Errorf("unbalanced ')' at offset %d", s.pos)
	}

	word := s.regular()
	if strings.IndexByte("+-.0123456789", word[0]) >= 0 {
		if f, err := strconv.ParseFloat(word, 64); err == nil {
			return f, nil
		}
	}
	return pdfKeyword(word), nil
}

// regular consumes a run of regular characters.
func (s *contentScanner) regular() string {
	start := s.pos
	for s.pos < len(s.data) && !isWhite(s.data[s.pos]) && !isDelim(s.data[s.pos]) {
		s.pos++
	}
	if s.pos == start {
		s.pos++
	}
	return string(s.data[start:s.pos])
}

func (s *contentScanner) name() string {
	raw := s.regular()
	if raw == "" || isWhite(raw[0]) || isDelim(raw[0]) {
		s.pos -= len(raw)
		return ""
	}
	var b []byte
	for i := 0; i < len(raw); i++ {
		if raw[i] == '#' && i+2 < len(raw) {
			if v, err := strconv.ParseUint(raw[i+1:i+3], 16, 8); err == nil {
				b = append(b, byte(v))
				i += 2
				continue
			}
		}
		b = append(b, raw[i])
	}
	return string(b)
}

func (s *contentScanner) literalString() (pdfString, error) {
	s.pos++
	var b []byte
	depth := 1
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		switch c {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return pdfString(b), nil
			}
		case '\\':
			if s.pos >= len(s.data) {
				continue
			}
			e := s.data[s.pos]
			s.pos++
			switch e {
			case 'n':
				c = '\n'
			case 'r':
				c = '\r'
			case 't':
				c = '\t'
			case 'b':
				c = '\b'
			case 'f':
				c = '\f'
			case '\r':
				if s.pos < len(s.data) && s.data[s.pos] == '\n' {
					s.pos++
				}
				continue
			case '\n':
				continue
			case '0', '1', '2', '3', '4', '5', '6', '7':
				v := int(e - '0')
				for i := 0; i < 2 && s.pos < len(s.data) && s.data[s.pos] >= '0' && s.data[s.pos] <= '7'; i++ {
					v = v*8 + int(s.data[s.pos]-'0')
					s.pos++
				}
				c = byte(v)
			default:
				c = e
			}
		}
		b = append(b, c)
	}
	return "", errors.New("unterminated string")
}

func (s *contentScanner) hexString() (pdfString, error) {
	s.pos++
	var digits []byte
	for s.pos < len(s.data) {
		c := s.data[s.pos]
		s.pos++
		if c == '>' {
			if len(digits)%2 == 1 {
				digits = append(digits, '0')
			}
			out := make([]byte, len(digits)/2)
			if _, err := hex.Decode(out, digits); err != nil {
				return "", fmt.Errorf("bad hex string: %w", err)
			}
			return pdfString(out), nil
		}
		if !isWhite(c) {
			digits = append(digits, c)
		}
	}
	return "", errors.New("unterminated hex string")
}

// next returns the next operand or operator. Arrays and dictionaries are
// assembled; operators come back as pdfKeyword.
func (s *contentScanner) next() (any, error) {
	tok, err := s.token()
	if err != nil {
		return nil, err
	}
	kw, ok := tok.(pdfKeyword)
	if !ok {
		return tok, nil
	}
	switch kw {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "null":
		return nil, nil
	case "[":
		var arr pdfArray
		for {
			v, err := s.next()
			if err != nil {
				return nil, err
			}
			if v == pdfKeyword("]") {
				return arr, nil
			}
			arr = append(arr, v)
		}
	case "<<":
		d := pdfDict{}
		for {
			k, err := s.next()
			if err != nil {
				return nil, err
			}
			if k == pdfKeyword(">>") {
				return d, nil
			}
			key, ok := k.(pdfName)
			if !ok {
				return nil, fmt.Errorf("dictionary key %v is not a name", k)
			}
			v, err := s.next()
			if err != nil {
				return nil, err
			}
			d[string(key)] = v
		}
	}
	return kw, nil
}

// inlineImage reads what follows a BI operator up to and including EI.
func (s *contentScanner) inlineImage() (*inlineImage, error) {
	dict := pdfDict{}
	for {
		k, err := s.next()
		if err != nil {
			return nil, fmt.Errorf("inline image: %w", err)
		}
		if k == pdfKeyword("ID") {
			break
		}
		key, ok := k.(pdfName)
		if !ok {
			return nil, fmt.Errorf("inline image: key %v is not a name", k)
		}
		v, err := s.next()
		if err != nil {
			return nil, fmt.Errorf("inline image: %w", err)
		}
		dict[string(key)] = v
	}
	// A single white-space byte separates ID from the data.
	if s.pos < len(s.data) && isWhite(s.data[s.pos]) {
		s.pos++
	}
	start := s.pos

	if n := inlineDataLength(dict); n >= 0 && start+n <= len(s.data) {
		s.pos = start + n
		s.skipSpace()
		if bytes.HasPrefix(s.data[s.pos:], []byte("EI")) && s.endsKeyword(s.pos+2) {
			s.pos += 2
			return &inlineImage{dict: dict, data: s.data[start : start+n]}, nil
		}
	}

	for i := start; i+1 < len(s.data); i++ {
		if s.data[i] != 'E' || s.data[i+1] != 'I' {
			continue
		}
		if i > start && !isWhite(s.data[i-1]) || !s.endsKeyword(i+2) {
			continue
		}
		end := i
		if end > start && isWhite(s.data[end-1]) {
			end--
		}
		s.pos = i + 2
		return &inlineImage{dict: dict, data: s.data[start:end]}, nil
	}
	return nil, errors.New("inline image: missing EI")
}

func (s *contentScanner) endsKeyword(i int) bool {
	return i >= len(s.data) || isWhite(s.data[i]) || isDelim(s.data[i])
}

// inlineDataLength is the byte length of unfiltered inline image samples, or
// -1 when it cannot be known before EI.
func inlineDataLength(d pdfDict) int {
	if inlineEntry(d, "F", "Filter") != nil {
		return -1
	}
	w, _ := inlineEntry(d, "W", "Width").(float64)
	h, _ := inlineEntry(d, "H", "Height").(float64)
	bpc, _ := inlineEntry(d, "BPC", "BitsPerComponent").(float64)
	comps := 0
	if mask, _ := inlineEntry(d, "IM", "ImageMask").(bool); mask {
		comps, bpc = 1, 1
	} else {
		switch cs := inlineEntry(d, "CS", "ColorSpace").(type) {
		case pdfName:
			comps = colorComponents(expandInline(inlineColorSpaces, string(cs)))
		case pdfArray:
			if len(cs) > 0 && (cs[0] == pdfName("I") || cs[0] == pdfName("Indexed")) {
				comps = 1
			}
		}
	}
	if w <= 0 || h <= 0 || bpc <= 0 || comps == 0 {
		return -1
	}
	row := (int(w)*comps*int(bpc) + 7) / 8
	return row * int(h)
}

func inlineEntry(d pdfDict, short, long string) any {
	if v, ok := d[short]; ok {
		return v
	}
	return d[long]
}

func colorComponents(cs string) int {
	switch cs {
	case "DeviceGray", "CalGray":
		return 1
	case "DeviceRGB", "CalRGB":
		return 3
	case "DeviceCMYK":
		return 4
	}
	return 0
}
