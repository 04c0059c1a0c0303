package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/retroimage/cpm8/disk"
	"github.com/retroimage/cpm8/loggy"
)

var (
	shellMode  = flag.Bool("shell", false, "Start interactive mode")
	mediaName  = flag.String("media", "ibm3740", "Media preset: "+mediaNames())
	baseName   = flag.String("datastore", "", "Fingerprint datastore path (default <binpath>/fingerprints)")
	ingestPath = flag.String("ingest", "", "Disk image or directory to ingest")
	queryPath  = flag.String("query", "", "Disk image to catalog and analyze")
	withHealth = flag.Bool("health", false, "Include health details with -query")
	searchName = flag.String("search-filename", "", "Search datastore for files matching pattern")
	searchHash = flag.String("search-hash", "", "Search datastore for files with content hash")
	fileDupes  = flag.Bool("file-dupes", false, "Report duplicate files across ingested volumes")
	wholeDupes = flag.Bool("whole-dupes", false, "Report identical ingested volumes")
	verbose    = flag.Bool("verbose", false, "Log to stderr as well as the logfile")
)

const defaultMedia = disk.MEDIA_IBM_3740

var allMedia = []disk.MediaID{
	disk.MEDIA_IBM_3740,
	disk.MEDIA_OSBORNE_1,
	disk.MEDIA_KAYPRO_II,
	disk.MEDIA_HD_8MB,
}

func mediaNames() string {
	return "ibm3740, osborne1, kaypro2, hd8mb"
}

// mediaHint is the filename fragment that identifies a preset when two
// formats share a raw image size.
func mediaHint(id disk.MediaID) string {
	switch id {
	case disk.MEDIA_OSBORNE_1:
		return "osborne"
	case disk.MEDIA_KAYPRO_II:
		return "kaypro"
	case disk.MEDIA_HD_8MB:
		return "hd"
	}
	return "ibm"
}

func mediaFromName(name string) (disk.MediaID, error) {
	switch strings.ToLower(name) {
	case "ibm3740", "3740", "8sssd":
		return disk.MEDIA_IBM_3740, nil
	case "osborne1", "osborne":
		return disk.MEDIA_OSBORNE_1, nil
	case "kaypro2", "kaypro":
		return disk.MEDIA_KAYPRO_II, nil
	case "hd8mb", "hd":
		return disk.MEDIA_HD_8MB, nil
	}
	return disk.MEDIA_NONE, fmt.Errorf("unknown media %q (want one of %s)", name, mediaNames())
}

// binpath is where the datastore, logs and shell history live.
func binpath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".cpm8")
}

func query(path string) int {

	id := guessMedia(path)
	sv, err := mountImage(path, id)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	defer sv.vol.Unmount()

	commandVolumes[0] = sv
	commandTarget = 0

	shellInfo(nil)
	fmt.Println()
	for u := 0; u <= disk.MAX_USER; u++ {
		files := sv.vol.List(u)
		// user 0 entries are visible everywhere; only print them once
		var own []*disk.FileEntry
		for _, f := range files {
			if f.User == u {
				own = append(own, f)
			}
		}
		if len(own) == 0 {
			continue
		}
		fmt.Printf("User %d:\n", u)
		for _, f := range own {
			fmt.Println(catalogLine(sv.vol, f))
		}
	}

	if *withHealth {
		fmt.Println()
		shellHealth(nil)
	}
	return 0
}

func main() {

	flag.Parse()

	if *baseName == "" {
		*baseName = binpath() + "/fingerprints"
	}

	loggy.LogFolder = binpath() + "/logs/"
	os.MkdirAll(loggy.LogFolder, 0755)
	loggy.ECHO = *verbose

	loggy.Get(0).Logf("cpm8 start: media=%s datastore=%s", *mediaName, *baseName)

	switch {
	case *queryPath != "":
		os.Exit(query(*queryPath))
	case *ingestPath != "":
		walk(*ingestPath)
	case *searchName != "":
		searchByName(*searchName)
	case *searchHash != "":
		searchByHash(*searchHash)
	case *fileDupes:
		reportFileDupes()
	case *wholeDupes:
		reportWholeDupes()
	case *shellMode || flag.NArg() == 0:
		shellDo()
	default:
		flag.Usage()
		os.Exit(1)
	}
}
