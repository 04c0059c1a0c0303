package main

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/retroimage/cpm8/disk"
	"github.com/retroimage/cpm8/loggy"
)

const processWORKERS = 8

var imageExt = regexp.MustCompile(`(?i)\.(dsk|img|cpm|raw|ima)$`)

var ingestMutex sync.Mutex
var ingestOK, ingestFailed int

// walk fingerprints a single image or everything under a directory.
func walk(path string) {

	l := loggy.Get(0)

	info, err := os.Stat(path)
	if err != nil {
		fmt.Println(err)
		return
	}

	start := time.Now()
	ingestOK, ingestFailed = 0, 0

	if !info.IsDir() {
		ingestVolume(path)
	} else {
		var queue = make(chan string, processWORKERS*2)
		var wg sync.WaitGroup

		for i := 0; i < processWORKERS; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for p := range queue {
					ingestVolume(p)
				}
			}()
		}

		filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
			if err != nil || info.IsDir() {
				return nil
			}
			if !imageExt.MatchString(p) {
				return nil
			}
			queue <- p
			return nil
		})
		close(queue)
		wg.Wait()
	}

	l.Logf("ingest: %d ok, %d failed in %v", ingestOK, ingestFailed, time.Since(start))
	fmt.Printf("Ingested %d volume(s), %d failed (%v)\n", ingestOK, ingestFailed, time.Since(start))
}

func ingestVolume(path string) {

	l := loggy.Get(0)

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}

	sv, err := mountImage(abs, guessMedia(abs))
	if err != nil {
		l.Errorf("ingest %s: %v", abs, err)
		ingestMutex.Lock()
		ingestFailed++
		ingestMutex.Unlock()
		return
	}
	defer sv.vol.Unmount()

	vf := fingerprint(sv, abs)
	if err := vf.WriteToFile(*baseName); err != nil {
		l.Errorf("ingest %s: store: %v", abs, err)
		ingestMutex.Lock()
		ingestFailed++
		ingestMutex.Unlock()
		return
	}

	l.Logf("ingested %s (%s): %d files", abs, vf.Media, len(vf.Files))
	ingestMutex.Lock()
	ingestOK++
	ingestMutex.Unlock()
}

// guessMedia picks a preset by exact image size, falling back to the
// -media flag. A filename hint breaks ties between same-size formats.
func guessMedia(path string) disk.MediaID {

	id, err := mediaFromName(*mediaName)
	if err != nil {
		id = defaultMedia
	}

	info, err := os.Stat(path)
	if err != nil {
		return id
	}

	lower := strings.ToLower(filepath.Base(path))
	var bySize []disk.MediaID
	for _, cand := range allMedia {
		if info.Size() == int64(cand.Geometry().TotalBytes()) {
			bySize = append(bySize, cand)
		}
	}
	for _, cand := range bySize {
		if strings.Contains(lower, mediaHint(cand)) {
			return cand
		}
	}
	if len(bySize) > 0 {
		return bySize[0]
	}
	return id
}
