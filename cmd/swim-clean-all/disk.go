package main

import (
	"fmt"

	"github.com/shirou/gopsutil/v3/disk"
)

// diskSnapshot is the state of the filesystem holding the search root.
type diskSnapshot struct {
	Fstype string
	Total  uint64
	Free   uint64
	ok     bool
}

func takeDiskSnapshot(path string) (diskSnapshot, error) {
	usage, err := disk.Usage(path)
	if err != nil {
		return diskSnapshot{}, fmt.Errorf("disk usage of %s: %w", path, err)
	}
	if usage.Total == 0 {
		return diskSnapshot{}, fmt.Errorf("disk usage of %s: empty filesystem", path)
	}
	return diskSnapshot{
		Fstype: usage.Fstype,
		Total:  usage.Total,
		Free:   usage.Free,
		ok:     true,
	}, nil
}

// freed returns how much free space grew between two snapshots, or 0 when it
// cannot be told (missing snapshot or other writers filled the disk).
func freed(before, after diskSnapshot) uint64 {
	if !before.ok || !after.ok || after.Free < before.Free {
		return 0
	}
	return after.Free - before.Free
}
