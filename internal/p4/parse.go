package p4

import (
	"regexp"
	"strings"
)

// The parsers in this file are lenient by contract: lines that do not match
// the expected shape are skipped, never errors. Server versions interleave
// warnings and vary their output slightly, and a single odd line must not
// take down a whole refresh.

// ChangeInfo is one parsed line of `p4 changes` output.
type ChangeInfo struct {
	Number      string
	Date        string
	User        string
	Client      string
	Status      string
	Description string
}

// changeLineRe matches: Change <num> on <date> by <user>@<client> *<status>* '<description>'
var changeLineRe = regexp.MustCompile(`^Change (\d+) on (\S+) by (\S+)@(\S+) \*(\w+)\* '(.*)'\s*$`)

// ParseChangeLine parses a single `p4 changes` line. The second return is
// false for lines that do not match (warnings, blank lines).
func ParseChangeLine(line string) (ChangeInfo, bool) {
	m := changeLineRe.FindStringSubmatch(line)
	if m == nil {
		return ChangeInfo{}, false
	}
	return ChangeInfo{
		Number:      m[1],
		Date:        m[2],
		User:        m[3],
		Client:      m[4],
		Status:      m[5],
		Description: strings.TrimSpace(m[6]),
	}, true
}

// ParseChanges parses full `p4 changes` output, dropping non-matching lines.
func ParseChanges(output string) []ChangeInfo {
	var changes []ChangeInfo
	for _, line := range strings.Split(output, "\n") {
		if c, ok := ParseChangeLine(line); ok {
			changes = append(changes, c)
		}
	}
	return changes
}

// FstatRecord is the key/value block fstat prints for one file. Keys that
// appear with no value (boolean flags like isMapped or shelved) are recorded
// with the literal value "true".
type FstatRecord map[string]string

// DepotFile returns the record's depot path, if present.
func (r FstatRecord) DepotFile() string { return r["depotFile"] }

// ParseFstat splits raw fstat output into per-file records. Blocks are
// separated by blank lines; within a block, lines have the form
// "... <key> <value>" (second-level "... ... <key>" lines are folded into the
// same record).
func ParseFstat(output string) []FstatRecord {
	var records []FstatRecord
	var current FstatRecord

	flush := func() {
		if len(current) > 0 {
			records = append(records, current)
		}
		current = nil
	}

	for _, line := range strings.Split(output, "\n") {
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		rest, ok := strings.CutPrefix(line, "... ")
		if !ok {
			continue
		}
		// second-level fields, e.g. "... ... otherOpen0"
		rest = strings.TrimPrefix(rest, "... ")
		key, value, found := strings.Cut(rest, " ")
		if key == "" {
			continue
		}
		if !found || value == "" {
			value = "true"
		}
		if current == nil {
			current = make(FstatRecord)
		}
		// first occurrence wins; repeated keys within a block are rare and
		// come from indexed fields that are already distinct (resolveFromFile0)
		if _, exists := current[key]; !exists {
			current[key] = value
		}
	}
	flush()
	return records
}

// AlignFstat matches fstat records back to the requested depot paths by
// depot-path equality. Output order from the tool is not guaranteed to match
// request order, and a path with no server record (a shelved add that was
// never synced, for instance) is simply absent — its slot is nil. The result
// always has exactly len(paths) entries.
func AlignFstat(paths []string, records []FstatRecord) []FstatRecord {
	byDepot := make(map[string]FstatRecord, len(records))
	for _, rec := range records {
		if df := rec.DepotFile(); df != "" {
			if _, seen := byDepot[df]; !seen {
				byDepot[df] = rec
			}
		}
	}
	aligned := make([]FstatRecord, len(paths))
	for i, p := range paths {
		aligned[i] = byDepot[stripRevSuffix(p)]
	}
	return aligned
}

// stripRevSuffix removes a #rev or @change suffix from a depot path so that
// requested paths like //depot/a.txt#4 still match fstat's depotFile field.
func stripRevSuffix(path string) string {
	if i := strings.LastIndex(path, "#"); i > 0 {
		return path[:i]
	}
	return path
}

// OpenedFile is one parsed line of `p4 opened` output.
type OpenedFile struct {
	DepotPath string
	Revision  string
	Action    string
	Change    string // "default" or a decimal changelist number
	FileType  string
}

// openedLineRe matches: <depot>#<rev> - <op> <default change|change <n>> (<filetype>)
var openedLineRe = regexp.MustCompile(`^(//[^#]+)#(\d+) - (\S+) (?:(default) change|change (\d+)) \(([^)]+)\)`)

// ParseOpenedLine parses one `p4 opened` line. Changelist ownership is
// classified from the same line; no separate join is needed.
func ParseOpenedLine(line string) (OpenedFile, bool) {
	m := openedLineRe.FindStringSubmatch(line)
	if m == nil {
		return OpenedFile{}, false
	}
	change := m[5]
	if m[4] == "default" {
		change = "default"
	}
	return OpenedFile{
		DepotPath: m[1],
		Revision:  m[2],
		Action:    m[3],
		Change:    change,
		FileType:  m[6],
	}, true
}

// ParseOpened parses full `p4 opened` output.
func ParseOpened(output string) []OpenedFile {
	var files []OpenedFile
	for _, line := range strings.Split(output, "\n") {
		if f, ok := ParseOpenedLine(line); ok {
			files = append(files, f)
		}
	}
	return files
}

// ShelvedFile is one shelved file attributed to a changelist by the
// describe parser.
type ShelvedFile struct {
	Change    string
	DepotPath string
	Revision  string
	Action    string
}

var (
	describeHeaderRe = regexp.MustCompile(`^Change (\d+) by `)
	shelvedFileRe    = regexp.MustCompile(`^\.\.\. (//[^#]+)#(\d+) (\S+)\s*$`)
)

// ParseShelved parses `p4 describe -S -s` output covering several
// changelists. This is a streaming state machine rather than a per-line
// parser: a "Change <num> by ..." header establishes the current changelist,
// and subsequent "... <path>#<rev> <action>" lines belong to it until the
// next header. Input line order is load-bearing.
func ParseShelved(output string) []ShelvedFile {
	var files []ShelvedFile
	current := ""
	for _, line := range strings.Split(output, "\n") {
		if m := describeHeaderRe.FindStringSubmatch(line); m != nil {
			current = m[1]
			continue
		}
		if current == "" {
			continue
		}
		if m := shelvedFileRe.FindStringSubmatch(line); m != nil {
			files = append(files, ShelvedFile{
				Change:    current,
				DepotPath: m[1],
				Revision:  m[2],
				Action:    m[3],
			})
		}
	}
	return files
}
