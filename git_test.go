package main

import "testing"

func TestIsGitURL(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"https://github.com/user/repo.git", true},
		{"git@github.com:user/repo.git", true},
		{"git@internal:team/repo", true},
		{"https://example.com/page", false},
		{"test_dir", false},
		{"local/file.txt", false},
	}
	for _, tt := range tests {
		if got := isGitURL(tt.input); got != tt.want {
			t.Fatalf("isGitURL(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}
