package tle

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

// lineLength is the fixed width of a TLE data line.
const lineLength = 69

// Parse reads TLE data from r. Entries may be in 3-line form (name line
// followed by lines 1 and 2) or bare 2-line form. Malformed entries are
// skipped with a warning.
func Parse(r io.Reader, logger *slog.Logger) ([]Entry, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		if line := strings.TrimRight(scanner.Text(), "\r\n "); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading TLE data: %w", err)
	}

	var entries []Entry
	for i := 0; i < len(lines); {
		var name string
		if !strings.HasPrefix(lines[i], "1 ") {
			name = strings.TrimSpace(strings.TrimPrefix(lines[i], "0 "))
			i++
		}
		if i+1 >= len(lines) {
			logger.Warn("skipping truncated TLE entry", "line_index", i, "name", name)
			break
		}

		line1, line2 := lines[i], lines[i+1]
		if !strings.HasPrefix(line1, "1 ") || !strings.HasPrefix(line2, "2 ") {
			logger.Warn("skipping malformed TLE entry", "line_index", i, "name", name)
			i++
			continue
		}
		i += 2

		entry, err := parseEntry(name, line1, line2)
		if err != nil {
			logger.Warn("skipping TLE entry", "name", name, "error", err)
			continue
		}
		entries = append(entries, entry)
	}

	return entries, nil
}

func parseEntry(name, line1, line2 string) (Entry, error) {
	if err := ValidateLines(line1, line2); err != nil {
		return Entry{}, err
	}

	// NORAD catalog number, columns 3-7.
	noradStr := strings.TrimSpace(line1[2:7])
	noradID, err := strconv.Atoi(noradStr)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid NORAD ID %q: %w", noradStr, err)
	}

	// Epoch, columns 19-32.
	epoch, err := parseEpoch(strings.TrimSpace(line1[18:32]))
	if err != nil {
		return Entry{}, err
	}

	if name == "" {
		name = strconv.Itoa(noradID)
	}
	return Entry{
		NORADID: noradID,
		Name:    name,
		Epoch:   epoch,
		Line1:   line1,
		Line2:   line2,
	}, nil
}

// parseEpoch converts a TLE epoch in YYDDD.DDDDDDDD form to time.Time.
// Years 57-99 are 1900s, 00-56 are 2000s.
func parseEpoch(s string) (time.Time, error) {
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("epoch string too short: %q", s)
	}

	year, err := strconv.Atoi(s[:2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch year %q: %w", s[:2], err)
	}
	if year >= 57 {
		year += 1900
	} else {
		year += 2000
	}

	dayOfYear, err := strconv.ParseFloat(s[2:], 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid epoch day %q: %w", s[2:], err)
	}

	// Day 1 is January 1.
	start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	return start.Add(time.Duration((dayOfYear - 1) * float64(24*time.Hour))), nil
}

// ValidateLines checks a TLE line pair for the fixed-width layout, the
// modulo-10 checksum and every numeric field SGP4 initialization reads.
// Lines are checked as given; propagation uses them unmodified.
func ValidateLines(line1, line2 string) error {
	if len(line1) != lineLength {
		return fmt.Errorf("line1 length %d, expected %d", len(line1), lineLength)
	}
	if len(line2) != lineLength {
		return fmt.Errorf("line2 length %d, expected %d", len(line2), lineLength)
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got '%c'", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got '%c'", line2[0])
	}
	if err := verifyChecksum(line1); err != nil {
		return fmt.Errorf("line1: %w", err)
	}
	if err := verifyChecksum(line2); err != nil {
		return fmt.Errorf("line2: %w", err)
	}

	for _, f := range numericFields(line1, line2) {
		var err error
		if f.integer {
			_, err = strconv.ParseInt(f.value, 10, 0)
		} else {
			_, err = strconv.ParseFloat(f.value, 64)
		}
		if err != nil {
			return fmt.Errorf("invalid %s %q", f.name, f.value)
		}
	}
	return nil
}

type numericField struct {
	name    string
	value   string
	integer bool
}

// numericFields extracts the fields exactly as go-satellite's ParseTLE does,
// including its implied decimal points and limited space stripping. A field
// that fails here would make that parser exit the process.
func numericFields(line1, line2 string) []numericField {
	strip := func(s string) string { return strings.Replace(s, " ", "", 2) }
	return []numericField{
		{"catalog number", strings.TrimSpace(line1[2:7]), true},
		{"epoch year", line1[18:20], true},
		{"epoch day", line1[20:32], false},
		{"mean motion derivative", strip(line1[33:43]), false},
		{"mean motion second derivative", strip(line1[44:45] + "." + line1[45:50] + "e" + line1[50:52]), false},
		{"drag term", strip(line1[53:54] + "." + line1[54:59] + "e" + line1[59:61]), false},
		{"inclination", strip(line2[8:16]), false},
		{"right ascension of ascending node", strip(line2[17:25]), false},
		{"eccentricity", "." + line2[26:33], false},
		{"argument of perigee", strip(line2[34:42]), false},
		{"mean anomaly", strip(line2[43:51]), false},
		{"mean motion", strip(line2[52:63]), false},
	}
}

// verifyChecksum checks column 69 against the sum of the digits in columns
// 1-68, with each minus sign counting as 1.
func verifyChecksum(line string) error {
	want := line[lineLength-1]
	if want < '0' || want > '9' {
		return fmt.Errorf("checksum column %q is not a digit", want)
	}
	sum := 0
	for _, c := range line[:lineLength-1] {
		switch {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	if got := sum % 10; got != int(want-'0') {
		return fmt.Errorf("checksum mismatch: computed %d, line has %c", got, want)
	}
	return nil
}
