package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// Emitter renders documents into one of the three envelopes and appends
// them to the output sink. It owns the per-run document index used by
// the XML envelope, so two runs never share counter state.
type Emitter struct {
	w           io.Writer
	format      Format
	lineNumbers bool
	langs       *LanguageTable
	log         *zap.Logger

	index  int // next XML document index, 1-based
	opened bool

	counter TokenCounter // optional, counts tokens of emitted content
	collect bool         // retain raw documents (PDF rendering needs them)
	docs    []Document
	stats   RunStats
}

// NewEmitter builds a fresh emitter for a single run.
func NewEmitter(w io.Writer, opts Options, langs *LanguageTable, log *zap.Logger) *Emitter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Emitter{
		w:           w,
		format:      opts.Format,
		lineNumbers: opts.LineNumbers,
		langs:       langs,
		log:         log,
		index:       1,
	}
}

// SetTokenCounter enables token accounting for every emitted document.
func (e *Emitter) SetTokenCounter(c TokenCounter) { e.counter = c }

// CollectDocuments makes the emitter retain each raw document so a
// post-run renderer (the PDF writer) can consume them.
func (e *Emitter) CollectDocuments() { e.collect = true }

// Documents returns the retained raw documents, in emission order.
func (e *Emitter) Documents() []Document { return e.docs }

// Stats returns what the run emitted so far.
func (e *Emitter) Stats() RunStats { return e.stats }

// Begin writes the run-level opening, which only the XML envelope has.
// The <documents> wrapper is written when at least one input path was
// supplied, even if none of them yields a document.
func (e *Emitter) Begin(hasInputs bool) error {
	if e.format == FormatXML && hasInputs {
		e.opened = true
		return e.writeLine("<documents>")
	}
	return nil
}

// Finish closes the run-level wrapper opened by Begin.
func (e *Emitter) Finish() error {
	if e.opened {
		e.opened = false
		return e.writeLine("</documents>")
	}
	return nil
}

// Emit renders one document. The content must already be known to be
// valid text; decode checking happens before this point.
func (e *Emitter) Emit(path, content string) error {
	e.stats.Documents++
	e.stats.TotalBytes += int64(len(content))
	if e.counter != nil {
		e.stats.TotalTokens += e.counter.Count(content)
	}
	if e.collect {
		e.docs = append(e.docs, Document{Path: path, Content: content})
	}

	body := content
	if e.lineNumbers {
		body = addLineNumbers(body)
	}

	e.log.Debug("emitting document", zap.String("path", path), zap.Int("bytes", len(content)))

	switch e.format {
	case FormatXML:
		return e.emitXML(path, body)
	case FormatMarkdown:
		return e.emitMarkdown(path, body)
	default:
		return e.emitDefault(path, body)
	}
}

func (e *Emitter) emitDefault(path, body string) error {
	for _, line := range []string{path, "---", body, "", "---"} {
		if err := e.writeLine(line); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) emitXML(path, body string) error {
	index := e.index
	e.index++

	lines := []string{
		fmt.Sprintf(`<document index="%d">`, index),
		fmt.Sprintf("<source>%s</source>", path),
		"<document_content>",
		body,
		"</document_content>",
		"</document>",
	}
	for _, line := range lines {
		if err := e.writeLine(line); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) emitMarkdown(path, body string) error {
	fence := backtickFence(body)
	lines := []string{
		path,
		fence + e.langs.TagForPath(path),
		body,
		fence,
	}
	for _, line := range lines {
		if err := e.writeLine(line); err != nil {
			return err
		}
	}
	return nil
}

func (e *Emitter) writeLine(line string) error {
	_, err := fmt.Fprintln(e.w, line)
	return err
}

// backtickFence returns the shortest run of backticks, at least three,
// that does not already occur in the content.
func backtickFence(content string) string {
	fence := "```"
	for strings.Contains(content, fence) {
		fence += "`"
	}
	return fence
}

// addLineNumbers prefixes every line with its 1-based number, padded to
// the width of the last line's number and followed by two spaces. A
// trailing newline does not count as an extra line.
func addLineNumbers(content string) string {
	lines := strings.Split(content, "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	if len(lines) == 0 {
		return ""
	}

	width := len(strconv.Itoa(len(lines)))
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "%*d  %s", width, i+1, line)
	}
	return b.String()
}
