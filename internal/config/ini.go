package config

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"rvsim/internal/common"
)

// IniFile represents a parsed INI file.
// It maps section names to a map of key-value pairs.
// Global properties (before any section) are stored in the "" (empty string) section.
type IniFile struct {
	Sections map[string]map[string]string
}

// NewIniFile creates a new empty IniFile
func NewIniFile() *IniFile {
	return &IniFile{
		Sections: make(map[string]map[string]string),
	}
}

// ParseIni reads an INI file from r. Section and key names are folded to
// lower case; a line that is neither a section header nor key=value is an
// ErrConfigParse error.
func ParseIni(r io.Reader) (*IniFile, error) {
	ini := NewIniFile()
	scanner := bufio.NewScanner(r)
	currentSection := ""
	ini.Sections[currentSection] = make(map[string]string)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())

		// Ignore empty lines and comments
		if line == "" || strings.HasPrefix(line, ";") || strings.HasPrefix(line, "#") {
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			currentSection = strings.ToLower(strings.TrimSpace(line[1 : len(line)-1]))
			if _, exists := ini.Sections[currentSection]; !exists {
				ini.Sections[currentSection] = make(map[string]string)
			}
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" {
			return nil, common.NewErrorMsg(common.ErrSevError, common.ErrConfigParse,
				fmt.Sprintf("line %d: expected key = value, got %q", lineNo, line))
		}
		key := strings.ToLower(strings.TrimSpace(parts[0]))
		val := strings.Trim(strings.TrimSpace(parts[1]), `"`)
		ini.Sections[currentSection][key] = val
	}
	if err := scanner.Err(); err != nil {
		return nil, common.NewErrorMsg(common.ErrSevError, common.ErrConfigParse, err.Error())
	}

	return ini, nil
}

// GetSection returns the key-value map for a given section, or nil if not found
func (ini *IniFile) GetSection(sectionName string) map[string]string {
	return ini.Sections[sectionName]
}
