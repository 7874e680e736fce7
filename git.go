package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// isGitURL reports whether the input looks like a clonable repository
// rather than a local path. Plain http(s) URLs without a .git suffix
// are treated as web pages, not repositories.
func isGitURL(input string) bool {
	return strings.HasSuffix(input, ".git") || strings.HasPrefix(input, "git@")
}

// cloneGitRepo shallow-clones the repository's default branch into a
// temporary directory and returns its path. Clone progress goes to the
// diagnostics channel; stdout carries only serialized documents.
func cloneGitRepo(url string, errw io.Writer) (string, error) {
	tempDir, err := os.MkdirTemp("", "promptcat-git-")
	if err != nil {
		return "", fmt.Errorf("creating temporary directory: %w", err)
	}

	fmt.Fprintf(errw, "Cloning %s into %s...\n", url, tempDir)

	_, err = git.PlainClone(tempDir, false, &git.CloneOptions{
		URL:           url,
		Progress:      errw,
		ReferenceName: plumbing.HEAD,
		SingleBranch:  true,
		Depth:         1,
	})
	if err != nil {
		_ = os.RemoveAll(tempDir)
		return "", fmt.Errorf("cloning %s: %w", url, err)
	}

	return tempDir, nil
}
