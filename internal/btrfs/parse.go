package btrfs

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// parseSubvolumeList extracts tree-relative paths from "subvolume list"
// output. Lines look like:
//
//	ID 257 gen 12 top level 5 path home/user
//
// Subvolume paths may contain spaces, so the path is everything after the
// last " path " marker.
func parseSubvolumeList(out []byte) ([]string, error) {
	var paths []string

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		idx := strings.LastIndex(line, " path ")
		if idx < 0 {
			return nil, fmt.Errorf("unexpected subvolume list line: %q", line)
		}
		paths = append(paths, strings.TrimSpace(line[idx+len(" path "):]))
	}

	return paths, scanner.Err()
}

// parseSnapshotList extracts (path, generation) from "subvolume list -s"
// output. Lines look like:
//
//	ID 258 gen 30 cgen 28 top level 5 otime 2026-08-26 09:00:00 path .btrfs/x
func parseSnapshotList(out []byte) ([]SnapshotRecord, error) {
	var records []SnapshotRecord

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		idx := strings.LastIndex(line, " path ")
		if idx < 0 {
			return nil, fmt.Errorf("unexpected snapshot list line: %q", line)
		}

		gen, err := fieldAfter(line[:idx], "gen")
		if err != nil {
			return nil, fmt.Errorf("parsing snapshot list line %q: %w", line, err)
		}

		records = append(records, SnapshotRecord{
			Path:       strings.TrimSpace(line[idx+len(" path "):]),
			Generation: gen,
		})
	}

	return records, scanner.Err()
}

// fieldAfter returns the numeric field following the first occurrence of key.
func fieldAfter(line, key string) (uint64, error) {
	fields := strings.Fields(line)
	for i, f := range fields {
		if f == key && i+1 < len(fields) {
			return strconv.ParseUint(fields[i+1], 10, 64)
		}
	}
	return 0, fmt.Errorf("no %q field", key)
}

// parseShow extracts the parent UUID and read-only flag from "subvolume show"
// output. The tool prints "-" for an absent parent UUID.
func parseShow(out []byte) SubvolumeInfo {
	info := SubvolumeInfo{}

	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), ":")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.TrimSpace(value)

		switch key {
		case "Parent UUID":
			if value != "-" {
				info.ParentUUID = value
			}
		case "Flags":
			info.ReadOnly = strings.Contains(value, "readonly")
		}
	}

	return info
}
