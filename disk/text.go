package disk

import "bytes"

// TEXT_EOF is the control-Z sentinel that terminates CP/M text files.
const TEXT_EOF = 0x1A

// TextContent translates raw CP/M text to modern form: truncate at the
// first ^Z, strip the high bit some editors set, and fold CR/LF line
// endings to LF.
func TextContent(in []byte) []byte {
	if i := bytes.IndexByte(in, TEXT_EOF); i >= 0 {
		in = in[:i]
	}

	out := make([]byte, 0, len(in))
	for i := 0; i < len(in); i++ {
		c := in[i] & 0x7f
		if c == '\r' {
			if i+1 < len(in) && in[i+1]&0x7f == '\n' {
				continue
			}
			c = '\n'
		}
		out = append(out, c)
	}
	return out
}

// IsProbablyText uses the classic heuristic: mostly printable 7-bit bytes
// with no NULs before the sentinel.
func IsProbablyText(in []byte) bool {
	if i := bytes.IndexByte(in, TEXT_EOF); i >= 0 {
		in = in[:i]
	}
	if len(in) == 0 {
		return false
	}

	printable := 0
	for _, c := range in {
		c &= 0x7f
		if c == 0 {
			return false
		}
		if c >= 0x20 && c < 0x7f || c == '\r' || c == '\n' || c == '\t' {
			printable++
		}
	}
	return printable*100/len(in) >= 95
}
