package main

import (
	"fmt"
	"sort"
)

// DuplicateFileCollection groups identical file payloads found across the
// ingested volumes, keyed by content hash.
type DuplicateFileCollection struct {
	SHA256 string
	Name   string
	Size   int64
	Found  []string
}

func reportFileDupes() {

	byHash := make(map[string]*DuplicateFileCollection)

	for _, vf := range loadFingerprints() {
		for _, ff := range vf.Files {
			if ff.SHA256 == "" || ff.Size == 0 {
				continue
			}
			c, ok := byHash[ff.SHA256]
			if !ok {
				c = &DuplicateFileCollection{
					SHA256: ff.SHA256,
					Name:   ff.Name,
					Size:   ff.Size,
				}
				byHash[ff.SHA256] = c
			}
			c.Found = append(c.Found, fmt.Sprintf("%s (u%d %s)", vf.Filename, ff.User, ff.Name))
		}
	}

	var dupes []*DuplicateFileCollection
	for _, c := range byHash {
		if len(c.Found) > 1 {
			dupes = append(dupes, c)
		}
	}
	sort.Slice(dupes, func(i, j int) bool {
		return len(dupes[i].Found) > len(dupes[j].Found)
	})

	for _, c := range dupes {
		fmt.Printf("%s  %s (%d bytes) x%d\n", c.SHA256[:16], c.Name, c.Size, len(c.Found))
		for _, f := range c.Found {
			fmt.Printf("  %s\n", f)
		}
	}
	fmt.Printf("\n%d duplicate file group(s)\n", len(dupes))
}

func reportWholeDupes() {

	byHash := make(map[string][]string)

	for _, vf := range loadFingerprints() {
		// active-data hash, so free-space garbage does not split groups
		key := vf.SHA256Active
		if key == "" {
			key = vf.SHA256
		}
		byHash[key] = append(byHash[key], vf.FullPath)
	}

	var hashes []string
	for h, paths := range byHash {
		if len(paths) > 1 {
			hashes = append(hashes, h)
		}
	}
	sort.Strings(hashes)

	for _, h := range hashes {
		fmt.Printf("%s\n", h)
		for _, p := range byHash[h] {
			fmt.Printf("  %s\n", p)
		}
	}
	fmt.Printf("\n%d identical volume group(s)\n", len(hashes))
}
