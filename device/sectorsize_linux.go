//go:build linux

package device

import (
	"os"

	"golang.org/x/sys/unix"
)

const blksszGet = 0x1268

func logicalSectorSize(f *os.File) int {
	size, err := unix.IoctlGetInt(int(f.Fd()), blksszGet)
	if err != nil {
		return 0
	}
	return size
}
