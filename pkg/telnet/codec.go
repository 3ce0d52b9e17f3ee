package telnet

import "bytes"

// EscapeIAC doubles every IAC byte so that p can travel as plain data.
func EscapeIAC(p []byte) []byte {
	n := bytes.Count(p, []byte{iac})
	out := make([]byte, 0, len(p)+n)
	for _, b := range p {
		out = append(out, b)
		if b == iac {
			out = append(out, iac)
		}
	}
	return out
}

// UnescapeIAC collapses every IAC IAC pair back into a single IAC.
func UnescapeIAC(p []byte) []byte {
	out := make([]byte, 0, len(p))
	escaped := false
	for _, b := range p {
		if b == iac && escaped {
			escaped = false
			continue
		}
		escaped = b == iac
		out = append(out, b)
	}
	return out
}
