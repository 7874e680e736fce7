package main

import (
	"bufio"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Processor walks the input paths, applies the filters and hands every
// surviving file to the emitter. Traversal is strictly sequential; one
// candidate is fully emitted before the next is considered.
type Processor struct {
	opts Options
	emit *Emitter
	errw io.Writer // diagnostics channel, normally os.Stderr
	log  *zap.Logger

	failedPaths int
}

// NewProcessor builds a processor for a single run.
func NewProcessor(opts Options, emit *Emitter, errw io.Writer, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Processor{opts: opts, emit: emit, errw: errw, log: log}
}

// FailedPaths reports how many input paths could not be processed.
func (p *Processor) FailedPaths() int { return p.failedPaths }

// Run processes every input path in order. Per-file problems are
// diagnosed and skipped; only unreadable directories or gitignore files
// abort the run.
func (p *Processor) Run(paths []string) error {
	if err := p.emit.Begin(len(paths) > 0); err != nil {
		return err
	}

	for _, path := range paths {
		if isWebURL(path) {
			if err := p.processWebInput(path); err != nil {
				return err
			}
			continue
		}

		local := path
		if isGitURL(path) {
			tempDir, err := cloneGitRepo(path, p.errw)
			if err != nil {
				fmt.Fprintf(p.errw, "Error cloning git repo %s: %v\n", path, err)
				p.failedPaths++
				continue
			}
			local = tempDir
			defer os.RemoveAll(tempDir)
		}

		info, err := os.Stat(local)
		if err != nil {
			fmt.Fprintf(p.errw, "Path does not exist: %s\n", path)
			p.failedPaths++
			continue
		}

		// Seed the rule set from the .gitignore next to the input path,
		// matching how rules would be inherited had the walk started one
		// level up.
		var rules []string
		if !p.opts.IgnoreGitignore {
			rules, err = readGitignore(filepath.Dir(local))
			if err != nil {
				return err
			}
		}

		if info.IsDir() {
			err = p.walkDirectory(local, rules)
		} else {
			// Explicit file arguments bypass every directory-level filter.
			err = p.emitFile(local)
		}
		if err != nil {
			return err
		}
	}

	return p.emit.Finish()
}

// walkDirectory applies the filters to the direct children of dir,
// recurses into surviving directories and emits surviving files, in
// lexicographic name order. The rule slice is extended with a clipped
// append so sibling subtrees never observe each other's rules.
func (p *Processor) walkDirectory(dir string, rules []string) error {
	if !p.opts.IgnoreGitignore {
		more, err := readGitignore(dir)
		if err != nil {
			return err
		}
		if len(more) > 0 {
			rules = append(rules[:len(rules):len(rules)], more...)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading directory %s: %w", dir, err)
	}

	kept := entries[:0:0]
	for _, entry := range entries {
		if p.keepEntry(entry, rules) {
			kept = append(kept, entry)
		}
	}
	sort.Slice(kept, func(i, j int) bool { return kept[i].Name() < kept[j].Name() })

	for _, entry := range kept {
		path := filepath.Join(dir, entry.Name())
		if entry.IsDir() {
			if err := p.walkDirectory(path, rules); err != nil {
				return err
			}
			continue
		}
		if len(p.opts.Extensions) > 0 && !hasAllowedExtension(entry.Name(), p.opts.Extensions) {
			continue
		}
		if err := p.emitFile(path); err != nil {
			return err
		}
	}
	return nil
}

// keepEntry runs the three directory-level filters in their fixed
// order: hidden, gitignore, explicit ignore patterns.
func (p *Processor) keepEntry(entry fs.DirEntry, rules []string) bool {
	name := entry.Name()
	isDir := entry.IsDir()

	if !p.opts.IncludeHidden && strings.HasPrefix(name, ".") {
		return false
	}

	if !p.opts.IgnoreGitignore && matchesIgnoreRules(name, isDir, rules) {
		p.log.Debug("gitignore filtered", zap.String("name", name))
		return false
	}

	if len(p.opts.IgnorePatterns) > 0 {
		if !isDir || !p.opts.IgnoreFilesOnly {
			if matchesAnyPattern(name, p.opts.IgnorePatterns) {
				p.log.Debug("ignore pattern filtered", zap.String("name", name))
				return false
			}
		}
	}
	return true
}

// emitFile reads one candidate and emits it. Unreadable or undecodable
// files are diagnosed and skipped without consuming a document index.
func (p *Processor) emitFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(p.errw, "Warning: Skipping file %s due to error: %v\n", path, err)
		return nil
	}
	if !utf8.Valid(data) {
		fmt.Fprintf(p.errw, "Warning: Skipping file %s due to UnicodeDecodeError\n", path)
		return nil
	}
	return p.emit.Emit(path, string(data))
}

// readGitignore returns the non-empty, non-comment lines of dir's
// .gitignore. A missing file contributes no rules; any other read
// failure is fatal to the run.
func readGitignore(dir string) ([]string, error) {
	f, err := os.Open(filepath.Join(dir, ".gitignore"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading gitignore in %s: %w", dir, err)
	}
	defer f.Close()

	var rules []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rules = append(rules, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading gitignore in %s: %w", dir, err)
	}
	return rules, nil
}

// matchesIgnoreRules reports whether an entry's base name matches any
// accumulated gitignore rule. Directories additionally match rules
// written with a trailing slash.
func matchesIgnoreRules(name string, isDir bool, rules []string) bool {
	for _, rule := range rules {
		if ok, err := filepath.Match(rule, name); err == nil && ok {
			return true
		}
		if isDir {
			if ok, err := filepath.Match(rule, name+"/"); err == nil && ok {
				return true
			}
		}
	}
	return false
}

// matchesAnyPattern reports whether name glob-matches any pattern.
// Malformed patterns never match.
func matchesAnyPattern(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, err := filepath.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// hasAllowedExtension checks the extension allow-list: exact,
// case-sensitive, without the leading dot.
func hasAllowedExtension(name string, extensions []string) bool {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	for _, allowed := range extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}
