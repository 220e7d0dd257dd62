// Package mounts enumerates mounted filesystem paths, supplementing
// spec.md's scan-safety rules with the behavior original_source/zed's
// mounted_volume_paths() implements on Darwin via libc.getmntinfo: the
// scanner must never descend into a different mounted volume than the one
// the worktree root lives on. Go has no portable getmntinfo equivalent, so
// this reads /proc/mounts directly, which is the idiomatic Linux-native way
// to get the same information (no pack example imports a dedicated mount
// library, so this is hand-rolled — see DESIGN.md).
package mounts

import (
	"bufio"
	"os"
	"strings"
)

// List returns every mount point recorded in /proc/mounts. On platforms
// without /proc/mounts (anything but Linux), List returns just the single
// root "/" rather than an error: since "/" is never nested inside a
// worktree root, scan-safety degrades to "refuse nothing".
func List() ([]string, error) {
	f, err := os.Open("/proc/mounts")
	if err != nil {
		if os.IsNotExist(err) {
			return []string{"/"}, nil
		}
		return nil, err
	}
	defer f.Close()

	var points []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 {
			continue
		}
		points = append(points, fields[1])
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return points, nil
}

// OtherMountPaths returns the subset of all that are nested inside root but
// are not root itself — the set of paths the scanner must refuse to
// descend into, per spec.md's mount-point refusal rule.
func OtherMountPaths(root string, all []string) []string {
	var others []string
	for _, p := range all {
		if p == root {
			continue
		}
		if strings.HasPrefix(p, root+"/") {
			others = append(others, p)
		}
	}
	return others
}
