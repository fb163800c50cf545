package table

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
)

// Print writes the partitions to w, one per line. Batch output is
// name:index:first:last:guid:sizeK.
func (t *Table) Print(w io.Writer, parts []Descriptor, batch bool) error {
	if !batch {
		if _, err := fmt.Fprintf(w, "%-3s %-10s %-10s %-36s %-10s %s\n", "#", "From(#s)", "To(#s)", "GUID", "Size", "Name"); err != nil {
			return err
		}
	}
	for _, d := range parts {
		size := d.Blocks() * uint64(t.blockSize)
		var err error
		if batch {
			_, err = fmt.Fprintf(w, "%s:%d:%d:%d:%s:%d\n", d.Name, d.Index, d.FirstLBA, d.LastLBA, d.GUID, size/1024)
		} else {
			_, err = fmt.Fprintf(w, "%-3d %-10d %-10d %-36s %-10s %s\n", d.Index, d.FirstLBA, d.LastLBA, d.GUID, humanize.IBytes(size), d.Name)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
