package common

// WipeByteArray zeroes b in place. The CLI calls it on password buffers once
// the request carrying them has been sent.
func WipeByteArray(b []byte) {
	clear(b)
}
