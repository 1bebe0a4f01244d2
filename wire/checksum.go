package wire

import "fmt"

// Checksum computes the additive checksum defined by the protocol: the low
// byte of the sum of every byte in data, rendered as two uppercase hex
// digits. Callers pass the byte range from the first byte of the frame
// through the trailing '*' inclusive.
func Checksum(data []byte) string {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return fmt.Sprintf("%02X", sum)
}
