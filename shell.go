package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/retroimage/cpm8/disk"
	"github.com/retroimage/cpm8/loggy"
)

const MAXVOL = 8

// shellVolume is one mount slot: the image device, the mounted volume and
// the slot's active user area.
type shellVolume struct {
	dev   *disk.ImageDevice
	vol   *disk.Volume
	media disk.MediaID
	user  int
}

var commandList map[string]*shellCommand
var commandVolumes [MAXVOL]*shellVolume
var commandTarget int = -1

// slotForFile returns the slot an image is already mounted in, or -1.
func slotForFile(filename string) int {
	for i, v := range commandVolumes {
		if v != nil && v.dev.Filename == filename {
			return i
		}
	}
	return -1
}

func mountSlot(sv *shellVolume) (int, error) {
	for i, v := range commandVolumes {
		if v == nil {
			commandVolumes[i] = sv
			return i, nil
		}
	}
	return -1, errors.New("No free slots")
}

func currentVolume() *shellVolume {
	if commandTarget == -1 {
		return nil
	}
	return commandVolumes[commandTarget]
}

func smartSplit(line string) (string, []string) {

	var out []string

	var inqq bool
	var lastEscape bool
	var chunk string

	add := func() {
		if chunk != "" {
			out = append(out, chunk)
			chunk = ""
		}
	}

	for _, ch := range line {
		switch {
		case ch == '"':
			inqq = !inqq
			add()
		case ch == ' ':
			if inqq || lastEscape {
				chunk += string(ch)
			} else {
				add()
			}
			lastEscape = false
		case ch == '\\' && !inqq:
			lastEscape = true
		default:
			chunk += string(ch)
		}
	}

	add()

	if len(out) == 0 {
		return "", out
	}

	return out[0], out[1:]
}

func getPrompt() string {

	sv := currentVolume()
	if sv == nil {
		return "cpm:-:<no mount>> "
	}

	return fmt.Sprintf("cpm:%d:%s:u%d> ", commandTarget, filepath.Base(sv.dev.Filename), sv.user)
}

type shellCommand struct {
	Name             string
	Description      string
	MinArgs, MaxArgs int
	Code             func(args []string) int
	NeedsMount       bool
	Context          shellCommandContext
	Text             []string
}

type shellCommandContext int

const (
	sccNone shellCommandContext = 1 << iota
	sccLocal
	sccDiskFile
	sccCommand
)

type shellCompleter struct {
}

func hasPrefix(str []rune, prefix []rune) bool {
	if len(prefix) > len(str) {
		return false
	}
	for i := 0; i < len(prefix); i++ {
		if str[i] != prefix[i] {
			return false
		}
	}
	return true
}

func (sc *shellCompleter) Do(line []rune, pos int) ([][]rune, int) {

	prefix := ""
	chunk := ""
	for _, ch := range line {
		if ch == ' ' {
			prefix = chunk
			break
		} else {
			chunk += string(ch)
		}
	}

	chunk = ""
	cprefix := ""
	for i := 0; i < pos; i++ {
		ch := line[i]
		if ch == ' ' {
			cprefix = chunk
			chunk = ""
		} else {
			chunk += string(ch)
		}
	}
	if chunk != "" {
		cprefix = chunk
	}

	var context shellCommandContext = sccNone
	cmd, match := commandList[prefix]
	if match {
		context = cmd.Context
	} else {
		context = sccCommand
	}

	var items [][]rune
	switch context {
	case sccCommand:
		for k := range commandList {
			items = append(items, []rune(k))
		}
	case sccDiskFile:
		sv := currentVolume()
		if sv == nil {
			return [][]rune(nil), 0
		}
		for _, f := range sv.vol.List(sv.user) {
			items = append(items, []rune(f.Name))
		}
	case sccLocal:
		files, err := filepath.Glob(cprefix + "*")
		if err != nil {
			return items, 0
		}
		for _, v := range files {
			items = append(items, []rune(v))
		}
	}

	if len(items) == 0 {
		return [][]rune(nil), 0
	}

	var filt [][]rune
	for _, v := range items {
		if hasPrefix(v, []rune(cprefix)) {
			filt = append(filt, v[len(cprefix):])
		}
	}
	return filt, len(cprefix)
}

func init() {
	commandList = map[string]*shellCommand{
		"mount": {
			Name:        "mount",
			Description: "Mount a disk image",
			MinArgs:     1,
			MaxArgs:     2,
			Code:        shellMount,
			NeedsMount:  false,
			Context:     sccLocal,
			Text: []string{
				"mount <imagefile> [<media>]",
				"",
				"Mounts disk and switches to the new slot.",
				"Media presets: " + mediaNames(),
			},
		},
		"unmount": {
			Name:        "unmount",
			Description: "Unmount disk image",
			MinArgs:     0,
			MaxArgs:     1,
			Code:        shellUnmount,
			NeedsMount:  true,
			Context:     sccNone,
			Text: []string{
				"unmount [<slot>]",
				"",
				"Unmount the disk in the specified slot (or current slot)",
			},
		},
		"disks": {
			Name:        "disks",
			Description: "List mounted volumes",
			MinArgs:     0,
			MaxArgs:     0,
			Code:        shellDisks,
			NeedsMount:  false,
			Context:     sccNone,
			Text: []string{
				"disks",
				"",
				"List all mounted volumes",
			},
		},
		"target": {
			Name:        "target",
			Description: "Select mounted volume as default",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellTarget,
			NeedsMount:  false,
			Context:     sccNone,
			Text: []string{
				"target <slot>",
				"",
				"Select slot as default for commands",
			},
		},
		"dir": {
			Name:        "dir",
			Description: "List files in the active user area",
			MinArgs:     0,
			MaxArgs:     1,
			Code:        shellDir,
			NeedsMount:  true,
			Context:     sccNone,
			Text: []string{
				"dir [<pattern>]",
				"",
				"List files visible in the active user area (can use wildcards).",
			},
		},
		"user": {
			Name:        "user",
			Description: "Show or change the active user area",
			MinArgs:     0,
			MaxArgs:     1,
			Code:        shellUser,
			NeedsMount:  true,
			Context:     sccNone,
			Text: []string{
				"user [<0-31>]",
				"",
				"Change the user area scope for dir and file commands.",
			},
		},
		"info": {
			Name:        "info",
			Description: "Information about the current disk",
			MinArgs:     0,
			MaxArgs:     0,
			Code:        shellInfo,
			NeedsMount:  true,
			Context:     sccNone,
			Text: []string{
				"info",
				"",
				"Display information on current disk",
			},
		},
		"health": {
			Name:        "health",
			Description: "Volume health: free space, damage, notes",
			MinArgs:     0,
			MaxArgs:     0,
			Code:        shellHealth,
			NeedsMount:  true,
			Context:     sccNone,
			Text: []string{
				"health",
				"",
				"Free block counts, block collisions, damaged entries and scan notes.",
			},
		},
		"protected": {
			Name:        "protected",
			Description: "List protected boot-track entries",
			MinArgs:     0,
			MaxArgs:     0,
			Code:        shellProtected,
			NeedsMount:  true,
			Context:     sccNone,
			Text: []string{
				"protected",
				"",
				"Show entries whose pointers alias the boot tracks. Hidden from dir.",
			},
		},
		"type": {
			Name:        "type",
			Description: "Display a text file",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellType,
			NeedsMount:  true,
			Context:     sccDiskFile,
			Text: []string{
				"type <filename>",
				"",
				"Print file contents, ^Z terminated, CR/LF folded.",
			},
		},
		"extract": {
			Name:        "extract",
			Description: "Extract file from disk image",
			MinArgs:     1,
			MaxArgs:     2,
			Code:        shellExtract,
			NeedsMount:  true,
			Context:     sccDiskFile,
			Text: []string{
				"extract <filename> [<local name>]",
				"",
				"Extracts a file from the current disk",
			},
		},
		"put": {
			Name:        "put",
			Description: "Copy local file to disk",
			MinArgs:     1,
			MaxArgs:     2,
			Code:        shellPut,
			NeedsMount:  true,
			Context:     sccLocal,
			Text: []string{
				"put <local file> [<name>]",
				"",
				"Write local file to current disk in the active user area",
			},
		},
		"delete": {
			Name:        "delete",
			Description: "Remove file from disk",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellDelete,
			NeedsMount:  true,
			Context:     sccDiskFile,
			Text: []string{
				"delete <filename>",
				"",
				"Delete file from current disk",
			},
		},
		"rename": {
			Name:        "rename",
			Description: "Rename a file on the disk",
			MinArgs:     2,
			MaxArgs:     2,
			Code:        shellRename,
			NeedsMount:  true,
			Context:     sccDiskFile,
			Text: []string{
				"rename <filename> <new filename>",
				"",
				"Rename a file on a disk.",
			},
		},
		"lock": {
			Name:        "lock",
			Description: "Make file read-only",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellLock,
			NeedsMount:  true,
			Context:     sccDiskFile,
			Text: []string{
				"lock <filename>",
				"",
				"Set the read-only attribute on a file",
			},
		},
		"unlock": {
			Name:        "unlock",
			Description: "Make file writable",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellUnlock,
			NeedsMount:  true,
			Context:     sccDiskFile,
			Text: []string{
				"unlock <filename>",
				"",
				"Clear the read-only attribute on a file",
			},
		},
		"save": {
			Name:        "save",
			Description: "Write the image back to disk",
			MinArgs:     0,
			MaxArgs:     1,
			Code:        shellSave,
			NeedsMount:  true,
			Context:     sccLocal,
			Text: []string{
				"save [<local file>]",
				"",
				"Save the current image, optionally under a new name",
			},
		},
		"ingest": {
			Name:        "ingest",
			Description: "Ingest directory of images (or single image) into the datastore",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellIngest,
			NeedsMount:  false,
			Context:     sccLocal,
			Text: []string{
				"ingest <path>",
				"",
				"Fingerprint images into the cpm8 datastore.",
			},
		},
		"search": {
			Name:        "search",
			Description: "Search ingested volumes",
			MinArgs:     2,
			MaxArgs:     2,
			Code:        shellSearch,
			NeedsMount:  false,
			Context:     sccNone,
			Text: []string{
				"search <filename|hash> <value>",
				"",
				"Search the datastore for volumes containing a file.",
			},
		},
		"report": {
			Name:        "report",
			Description: "Run a duplicate report over the datastore",
			MinArgs:     1,
			MaxArgs:     1,
			Code:        shellReport,
			NeedsMount:  false,
			Context:     sccNone,
			Text: []string{
				"report <name>",
				"",
				"Reports:",
				"file-dupes     Duplicate files across ingested volumes",
				"whole-dupes    Identical ingested volumes",
			},
		},
		"ls": {
			Name:        "ls",
			Description: "List local files",
			MinArgs:     0,
			MaxArgs:     1,
			Code:        shellListFiles,
			NeedsMount:  false,
			Context:     sccLocal,
			Text: []string{
				"ls <pattern>",
				"",
				"List local files",
			},
		},
		"cd": {
			Name:        "cd",
			Description: "Change local path",
			MinArgs:     0,
			MaxArgs:     1,
			Code:        shellCd,
			NeedsMount:  false,
			Context:     sccLocal,
			Text: []string{
				"cd <path>",
				"",
				"Change local directory",
			},
		},
		"help": {
			Name:        "help",
			Description: "Shows this help",
			MinArgs:     0,
			MaxArgs:     1,
			Code:        shellHelp,
			NeedsMount:  false,
			Context:     sccCommand,
			Text: []string{
				"help <command>",
				"",
				"Display specific help for command or list of commands",
			},
		},
		"quit": {
			Name:        "quit",
			Description: "Leave this place",
			MinArgs:     0,
			MaxArgs:     0,
			Code:        shellQuit,
			NeedsMount:  false,
			Context:     sccNone,
		},
	}
}

func shellProcess(line string) int {
	line = strings.TrimSpace(line)

	verb, args := smartSplit(line)

	if verb == "" {
		return 0
	}

	verb = strings.ToLower(verb)
	command, ok := commandList[verb]
	if !ok {
		os.Stderr.WriteString(fmt.Sprintf("Unrecognized command: %s\n", verb))
		return -1
	}

	fmt.Println()
	var cok = true
	if len(args) < command.MinArgs {
		os.Stderr.WriteString(fmt.Sprintf("%s expects at least %d arguments\n", verb, command.MinArgs))
		cok = false
	}
	if command.MaxArgs != -1 && len(args) > command.MaxArgs {
		os.Stderr.WriteString(fmt.Sprintf("%s expects at most %d arguments\n", verb, command.MaxArgs))
		cok = false
	}
	if command.NeedsMount && currentVolume() == nil {
		os.Stderr.WriteString(fmt.Sprintf("%s only works on mounted disks\n", verb))
		cok = false
	}
	if !cok {
		return -1
	}

	r := command.Code(args)
	fmt.Println()
	return r
}

func shellDo() {

	ac := &shellCompleter{}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 getPrompt(),
		HistoryFile:            binpath() + "/.shell_history",
		DisableAutoSaveHistory: false,
		AutoComplete:           ac,
	})
	if err != nil {
		os.Exit(2)
	}
	defer rl.Close()

	running := true

	for running {
		line, err := rl.Readline()
		if err != nil {
			break
		}

		r := shellProcess(line)
		if r == 999 {
			running = false
		}

		rl.SetPrompt(getPrompt())
	}

}

// --- command implementations ---

func shellMount(args []string) int {

	// remounting the same image just retargets its existing slot
	if slot := slotForFile(args[0]); slot >= 0 {
		commandTarget = slot
		fmt.Printf("%s already mounted in slot %d\n", args[0], slot)
		return 0
	}

	media := *mediaName
	if len(args) > 1 {
		media = args[1]
	}

	id, err := mediaFromName(media)
	if err != nil {
		fmt.Println(err)
		return -1
	}

	sv, err := mountImage(args[0], id)
	if err != nil {
		fmt.Println(err)
		return -1
	}

	slot, err := mountSlot(sv)
	if err != nil {
		sv.vol.Unmount()
		fmt.Println(err)
		return -1
	}
	commandTarget = slot

	fmt.Printf("Mounted %s (%s) in slot %d\n", args[0], id, slot)
	return 0
}

func mountImage(filename string, id disk.MediaID) (*shellVolume, error) {
	dev, err := disk.LoadImageDevice(filename, id.Geometry(), id.Config().BlockSize)
	if err != nil {
		return nil, err
	}
	vol, err := disk.Mount(dev, id.Config())
	if err != nil {
		return nil, err
	}
	return &shellVolume{dev: dev, vol: vol, media: id}, nil
}

func shellUnmount(args []string) int {

	slot := commandTarget
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 || n >= MAXVOL || commandVolumes[n] == nil {
			fmt.Println("Invalid slot")
			return -1
		}
		slot = n
	}

	sv := commandVolumes[slot]
	if leaked := sv.vol.CheckLeaks(); len(leaked) > 0 {
		loggy.Get(slot).Errorf("unmount with %d descriptors still open", len(leaked))
	}
	if err := sv.vol.Unmount(); err != nil {
		fmt.Println(err)
		return -1
	}

	commandVolumes[slot] = nil
	if commandTarget == slot {
		commandTarget = -1
		for i, v := range commandVolumes {
			if v != nil {
				commandTarget = i
				break
			}
		}
	}
	return 0
}

func shellDisks(args []string) int {
	for i, v := range commandVolumes {
		if v == nil {
			continue
		}
		marker := " "
		if i == commandTarget {
			marker = "*"
		}
		fmt.Printf("%s %d: %-40s %s\n", marker, i, filepath.Base(v.dev.Filename), v.media)
	}
	return 0
}

func shellTarget(args []string) int {
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 || n >= MAXVOL || commandVolumes[n] == nil {
		fmt.Println("Invalid slot")
		return -1
	}
	commandTarget = n
	return 0
}

func shellUser(args []string) int {
	sv := currentVolume()
	if len(args) == 0 {
		fmt.Printf("User area %d\n", sv.user)
		return 0
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 0 || n > disk.MAX_USER {
		fmt.Println("User areas run 0 to 31")
		return -1
	}
	sv.user = n
	return 0
}

func shellDir(args []string) int {

	sv := currentVolume()
	pattern := "*"
	if len(args) > 0 {
		pattern = strings.ToUpper(args[0])
	}

	files := sv.vol.List(sv.user)
	var shown int
	var total int64
	for _, f := range files {
		if ok, _ := filepath.Match(pattern, f.Name); !ok {
			continue
		}
		fmt.Println(catalogLine(sv.vol, f))
		shown++
		total += f.Size(sv.vol.Config())
	}

	h := sv.vol.Health()
	fmt.Printf("\n%d file(s), %s, %s free\n", shown, sizeString(total),
		sizeString(int64(h.FreeBlocks)*int64(sv.vol.Config().BlockSize)))
	return 0
}

func catalogLine(vol *disk.Volume, f *disk.FileEntry) string {
	flags := ""
	if f.Attrs.ReadOnly {
		flags += "R"
	}
	if f.Attrs.System {
		flags += "S"
	}
	if f.Attrs.Archived {
		flags += "A"
	}
	stamp := ""
	if !f.Modified.IsZero() {
		stamp = f.Modified.Format("02-Jan-06 15:04")
	}
	return fmt.Sprintf("%2d: %-12s %8s %-3s %s", f.User, f.Name,
		sizeString(f.Size(vol.Config())), flags, stamp)
}

func sizeString(n int64) string {
	if n >= 1024 {
		return fmt.Sprintf("%dK", (n+1023)/1024)
	}
	return fmt.Sprintf("%db", n)
}

func shellInfo(args []string) int {
	sv := currentVolume()
	cfg := sv.vol.Config()
	geo := sv.dev.Geometry()

	fmt.Printf("Image:      %s\n", sv.dev.Filename)
	fmt.Printf("Media:      %s\n", sv.media)
	if sv.vol.Label() != "" {
		fmt.Printf("Label:      %s\n", sv.vol.Label())
	}
	fmt.Printf("Geometry:   %d tracks x %d sectors x %d bytes\n",
		geo.Tracks, geo.SectorsPerTrack, geo.SectorSize)
	fmt.Printf("Blocks:     %d x %d bytes (%d boot, %d directory)\n",
		cfg.TotalBlocks, cfg.BlockSize, cfg.BootBlocks, cfg.DirBlocks)
	fmt.Printf("Directory:  %d entries\n", cfg.DirEntries())
	fmt.Printf("Pointers:   %d byte(s)\n", cfg.PointerWidth())
	fmt.Printf("SHA256:     %s\n", sv.dev.ChecksumImage())
	return 0
}

func shellHealth(args []string) int {
	sv := currentVolume()
	h := sv.vol.Health()

	fmt.Printf("Free blocks:    %d of %d data blocks\n", h.FreeBlocks, h.DataBlocks-h.DirBlocks)
	fmt.Printf("Collisions:     %d\n", len(h.Collisions))
	for _, c := range h.Collisions {
		first := "<reserved>"
		if c.First != nil {
			first = c.First.Name
		}
		fmt.Printf("  block %d: %s / %s\n", c.Block, first, c.Second.Name)
	}
	fmt.Printf("Damaged:        %d\n", len(h.Damaged))
	for _, f := range h.Damaged {
		fmt.Printf("  %2d: %s\n", f.User, f.Name)
		for _, n := range f.Notes {
			fmt.Printf("      %s\n", n)
		}
	}
	fmt.Printf("Protected:      %d\n", len(h.Protected))
	for _, n := range h.Notes {
		fmt.Printf("note: %s\n", n)
	}
	return 0
}

func shellProtected(args []string) int {
	sv := currentVolume()
	for _, f := range sv.vol.Protected() {
		fmt.Println(catalogLine(sv.vol, f))
	}
	return 0
}

func findEntry(sv *shellVolume, name string) (*disk.FileEntry, error) {
	return sv.vol.Find(sv.user, name)
}

func shellType(args []string) int {
	sv := currentVolume()
	f, err := findEntry(sv, args[0])
	if err != nil {
		fmt.Println(err)
		return -1
	}

	d, err := sv.vol.Open(f, disk.FORK_TEXT, true)
	if err != nil {
		fmt.Println(err)
		return -1
	}
	defer d.Close()

	data, err := io.ReadAll(d)
	if err != nil {
		fmt.Println(err)
		return -1
	}
	os.Stdout.Write(disk.TextContent(data))
	return 0
}

func shellExtract(args []string) int {
	sv := currentVolume()
	f, err := findEntry(sv, args[0])
	if err != nil {
		fmt.Println(err)
		return -1
	}

	local := strings.ToLower(f.Name)
	if len(args) > 1 {
		local = args[1]
	}

	d, err := sv.vol.Open(f, disk.FORK_DATA, true)
	if err != nil {
		fmt.Println(err)
		return -1
	}
	defer d.Close()

	data, err := io.ReadAll(d)
	if err != nil {
		fmt.Println(err)
		return -1
	}

	if err := os.WriteFile(local, data, 0644); err != nil {
		fmt.Println(err)
		return -1
	}
	fmt.Printf("Extracted %s -> %s (%d bytes)\n", f.Name, local, len(data))
	return 0
}

func shellPut(args []string) int {
	sv := currentVolume()

	data, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Println(err)
		return -1
	}

	name := strings.ToUpper(filepath.Base(args[0]))
	if len(args) > 1 {
		name = strings.ToUpper(args[1])
	}

	if f, err := sv.vol.Find(sv.user, name); err == nil {
		if err := sv.vol.Delete(f); err != nil {
			fmt.Println(err)
			return -1
		}
	}

	f, err := sv.vol.Create(sv.user, name, disk.Attributes{})
	if err != nil {
		fmt.Println(err)
		return -1
	}

	d, err := sv.vol.Open(f, disk.FORK_DATA, false)
	if err != nil {
		fmt.Println(err)
		return -1
	}
	defer d.Close()

	if _, err := d.Write(data); err != nil {
		fmt.Println(err)
		return -1
	}
	fmt.Printf("Wrote %s (%d bytes) to user %d\n", f.Name, len(data), sv.user)
	return 0
}

func shellDelete(args []string) int {
	sv := currentVolume()
	f, err := findEntry(sv, args[0])
	if err != nil {
		fmt.Println(err)
		return -1
	}
	if err := sv.vol.Delete(f); err != nil {
		fmt.Println(err)
		return -1
	}
	return 0
}

func shellRename(args []string) int {
	sv := currentVolume()
	f, err := findEntry(sv, args[0])
	if err != nil {
		fmt.Println(err)
		return -1
	}
	if err := sv.vol.Rename(f, args[1]); err != nil {
		fmt.Println(err)
		return -1
	}
	return 0
}

func setLock(args []string, lock bool) int {
	sv := currentVolume()
	f, err := findEntry(sv, args[0])
	if err != nil {
		fmt.Println(err)
		return -1
	}
	attrs := f.Attrs
	attrs.ReadOnly = lock
	if err := sv.vol.SetAttributes(f, attrs); err != nil {
		fmt.Println(err)
		return -1
	}
	return 0
}

func shellLock(args []string) int {
	return setLock(args, true)
}

func shellUnlock(args []string) int {
	return setLock(args, false)
}

func shellSave(args []string) int {
	sv := currentVolume()
	target := sv.dev.Filename
	if len(args) > 0 {
		target = args[0]
	}
	if err := sv.dev.Save(target); err != nil {
		fmt.Println(err)
		return -1
	}
	fmt.Printf("Saved %s\n", target)
	return 0
}

func shellIngest(args []string) int {
	walk(args[0])
	return 0
}

func shellSearch(args []string) int {
	switch strings.ToLower(args[0]) {
	case "filename":
		searchByName(args[1])
	case "hash":
		searchByHash(args[1])
	default:
		fmt.Println("search type must be filename or hash")
		return -1
	}
	return 0
}

func shellReport(args []string) int {
	switch strings.ToLower(args[0]) {
	case "file-dupes":
		reportFileDupes()
	case "whole-dupes":
		reportWholeDupes()
	default:
		fmt.Println("report must be file-dupes or whole-dupes")
		return -1
	}
	return 0
}

func shellListFiles(args []string) int {
	pattern := "*"
	if len(args) > 0 {
		pattern = args[0]
	}
	files, err := filepath.Glob(pattern)
	if err != nil {
		fmt.Println(err)
		return -1
	}
	sort.Strings(files)
	for _, f := range files {
		fmt.Println(f)
	}
	return 0
}

func shellCd(args []string) int {
	dir := binpath()
	if len(args) > 0 {
		dir = args[0]
	}
	if err := os.Chdir(dir); err != nil {
		fmt.Println(err)
		return -1
	}
	wd, _ := os.Getwd()
	fmt.Println(wd)
	return 0
}

func shellHelp(args []string) int {

	if len(args) == 1 {
		cmd, ok := commandList[strings.ToLower(args[0])]
		if !ok {
			fmt.Printf("No help for %s\n", args[0])
			return -1
		}
		for _, line := range cmd.Text {
			fmt.Println(line)
		}
		return 0
	}

	var names []string
	for k := range commandList {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Printf("%-12s %s\n", k, commandList[k].Description)
	}
	return 0
}

func shellQuit(args []string) int {
	for i, v := range commandVolumes {
		if v == nil {
			continue
		}
		if leaked := v.vol.CheckLeaks(); len(leaked) > 0 {
			loggy.Get(i).Errorf("quit with %d descriptors still open in slot %d", len(leaked), i)
		}
	}
	return 999
}
