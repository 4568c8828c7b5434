// Package assets maps report player names to local asset files (headshots),
// tolerating the accent and punctuation differences between the report's
// spelling and the asset index.
package assets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	punctuationPattern = regexp.MustCompile("[.'`]")
	spacesPattern      = regexp.MustCompile(`\s+`)

	// stripMarks decomposes accented characters and drops the combining
	// marks, so "Jović" and "Jovic" produce the same key.
	stripMarks = transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// NormalizeNameKey reduces a player name to its lookup key: accents and
// punctuation removed, hyphens treated as spaces, lowercase, single-spaced.
func NormalizeNameKey(value string) string {
	ascii, _, err := transform.String(stripMarks, value)
	if err != nil {
		ascii = value
	}
	compact := strings.ToLower(strings.TrimSpace(ascii))
	compact = strings.ReplaceAll(compact, "\u00a0", " ")
	compact = punctuationPattern.ReplaceAllString(compact, "")
	compact = strings.ReplaceAll(compact, "-", " ")
	return strings.TrimSpace(spacesPattern.ReplaceAllString(compact, " "))
}

// Index resolves player names to headshot files.
type Index struct {
	fileByKey map[string]string
	available map[string]bool
}

// LoadIndex reads the name map JSON and scans the headshot directory. Both
// are optional; a missing map or directory yields an index that resolves
// nothing.
func LoadIndex(mapPath, headshotDir string) *Index {
	return &Index{
		fileByKey: loadNameMap(mapPath),
		available: availableFiles(headshotDir),
	}
}

// Headshot returns the asset file for a player name, or "" when the player
// has no mapped or present headshot.
func (idx *Index) Headshot(playerName string) string {
	key := NormalizeNameKey(playerName)
	if key == "" {
		return ""
	}
	file, ok := idx.fileByKey[key]
	if !ok || !idx.available[file] {
		return ""
	}
	return file
}

// loadNameMap accepts either numeric player IDs or file names as values.
func loadNameMap(path string) map[string]string {
	loaded := make(map[string]string)
	data, err := os.ReadFile(path)
	if err != nil {
		return loaded
	}
	var payload map[string]interface{}
	if err := json.Unmarshal(data, &payload); err != nil {
		return loaded
	}
	for name, value := range payload {
		key := NormalizeNameKey(name)
		if key == "" {
			continue
		}
		switch v := value.(type) {
		case float64:
			loaded[key] = fmt.Sprintf("%d.png", int64(v))
		case string:
			if strings.HasSuffix(v, ".png") {
				loaded[key] = filepath.Base(v)
			} else if _, err := strconv.Atoi(v); err == nil {
				loaded[key] = v + ".png"
			}
		}
	}
	return loaded
}

func availableFiles(dir string) map[string]bool {
	available := make(map[string]bool)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return available
	}
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".png") {
			available[entry.Name()] = true
		}
	}
	return available
}
