package scanner

import (
	"bufio"
	"os"
)

const (
	initialLineBuf = 64 * 1024
	maxLineBuf     = 8 * 1024 * 1024
)

// EachLine streams path line by line without materializing the whole file.
// fn receives each raw line; returning false stops the scan early. The byte
// slice is only valid for the duration of the call.
func EachLine(path string, fn func(line []byte) bool) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, initialLineBuf), maxLineBuf)
	for sc.Scan() {
		if !fn(sc.Bytes()) {
			return nil
		}
	}
	return sc.Err()
}
