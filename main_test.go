package main

import (
	"reflect"
	"strings"
	"testing"
)

func TestReadPathsFromStdin(t *testing.T) {
	paths, err := readPathsFromStdin(strings.NewReader("test_dir1/file1.txt\ntest_dir2/file2.txt"), false)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"test_dir1/file1.txt", "test_dir2/file2.txt"}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("got %v, want %v", paths, want)
	}

	// Whitespace-separated covers spaces and blank lines too.
	paths, err = readPathsFromStdin(strings.NewReader("  a.txt\n\n b.txt  c.txt\n"), false)
	if err != nil {
		t.Fatal(err)
	}
	want = []string{"a.txt", "b.txt", "c.txt"}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("got %v, want %v", paths, want)
	}
}

func TestReadPathsFromStdinNullSeparated(t *testing.T) {
	paths, err := readPathsFromStdin(strings.NewReader("with spaces.txt\x00other.txt\x00"), true)
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"with spaces.txt", "other.txt"}
	if !reflect.DeepEqual(paths, want) {
		t.Fatalf("got %v, want %v", paths, want)
	}
}

func TestBuildOptionsFormatPrecedence(t *testing.T) {
	restore := func(c, m bool) { cxml, markdownOut = c, m }
	defer restore(cxml, markdownOut)

	cxml, markdownOut = true, true
	if got := buildOptions().Format; got != FormatXML {
		t.Fatalf("XML should win when both formats are set, got %v", got)
	}

	cxml, markdownOut = false, true
	if got := buildOptions().Format; got != FormatMarkdown {
		t.Fatalf("expected markdown, got %v", got)
	}

	cxml, markdownOut = false, false
	if got := buildOptions().Format; got != FormatDefault {
		t.Fatalf("expected default, got %v", got)
	}
}
