package command

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"strings"
)

// CommandsDir is the resource directory scanned in plugin modules.
const CommandsDir = "Commands"

const scriptExt = ".js"

// ParseScripts walks root inside fsys and builds one WebCommand per *.js
// file. The command name is the file name without extension and its group
// is the parent directory relative to root. Leading "// @name", "// @label"
// and "// @group" comment lines override those defaults.
//
// A missing root yields no commands and no error.
func ParseScripts(fsys fs.FS, root, source string) ([]WebCommand, error) {
	if _, err := fs.Stat(fsys, root); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}

	var cmds []WebCommand
	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(path.Ext(p), scriptExt) {
			return nil
		}

		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}

		rel := strings.TrimPrefix(strings.TrimPrefix(p, root), "/")
		if root == "." {
			rel = p
		}
		c, err := parseScript(rel, data, source)
		if err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		cmds = append(cmds, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cmds, nil
}

func parseScript(rel string, data []byte, source string) (WebCommand, error) {
	base := path.Base(rel)
	c := WebCommand{
		Name:   strings.TrimSuffix(base, path.Ext(base)),
		Path:   rel,
		Source: source,
		Script: string(data),
	}
	if dir := path.Dir(rel); dir != "." {
		c.Group = dir
	}

	// Header lines may be as long as the script itself.
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 4096), len(data)+1)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "//") {
			break
		}
		key, value, ok := strings.Cut(strings.TrimSpace(strings.TrimPrefix(line, "//")), " ")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch key {
		case "@name":
			c.Name = value
		case "@label":
			c.Label = value
		case "@group":
			c.Group = value
		}
	}
	if err := sc.Err(); err != nil {
		return WebCommand{}, err
	}
	if c.Label == "" {
		c.Label = c.Name
	}
	return c, nil
}

// AddByFS adds every script under Commands/ in fsys, typically a plugin
// module's resources. It returns the number of commands added. A module
// without scripts adds nothing and never fails, even on a frozen catalog.
func (r *WebRepository) AddByFS(fsys fs.FS, source string) (int, error) {
	if fsys == nil {
		return 0, nil
	}
	cmds, err := ParseScripts(fsys, CommandsDir, source)
	if err != nil {
		return 0, err
	}
	return r.addParsed(cmds)
}

// AddByDirectory adds every script below dir on disk.
func (r *WebRepository) AddByDirectory(dir, source string) (int, error) {
	cmds, err := ParseScripts(os.DirFS(dir), ".", source)
	if err != nil {
		return 0, err
	}
	return r.addParsed(cmds)
}

func (r *WebRepository) addParsed(cmds []WebCommand) (int, error) {
	if len(cmds) == 0 {
		return 0, nil
	}
	if err := r.Add(cmds...); err != nil {
		return 0, err
	}
	return len(cmds), nil
}
