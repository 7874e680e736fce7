package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var (
	// Filtering
	extensions      []string
	includeHidden   bool
	ignoreFilesOnly bool
	ignoreGitignore bool
	ignorePatterns  []string

	// Output
	outputFile  string
	cxml        bool
	markdownOut bool
	lineNumbers bool
	toClipboard bool
	pdfFile     string

	// Input sources
	nullSep         bool
	interactiveMode bool

	// Token counting
	countTokens      bool
	tokenizerBackend string
	tokenizerModel   string
	tokenizerFile    string

	// Web
	traverseLinks bool
	linkDepth     int

	debugMode bool
)

// version is set via ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:     "promptcat [PATHS...]",
	Short:   "Concatenate files and directories into a single LLM prompt",
	Long:    `promptcat walks files, directories, git repositories and web pages and
concatenates their contents into one text stream formatted for a large
language model's context window.`,
	Version: version,
	Args:    cobra.ArbitraryArgs,
	Run: func(cmd *cobra.Command, args []string) {
		logger := zap.NewNop()
		if debugMode {
			var err error
			logger, err = zap.NewDevelopment()
			if err != nil {
				fatal(err)
			}
			defer logger.Sync()
		}

		inputPaths, err := gatherInputPaths(args)
		if err != nil {
			fatal(err)
		}
		if inputPaths == nil && interactiveMode {
			// Selection aborted.
			return
		}

		opts := buildOptions()

		var sink Sink
		if pdfFile != "" {
			// PDF rendering consumes the collected documents after the
			// run; no text stream is produced.
			sink = discardSink{}
		} else {
			sink, err = newSink(outputFile, toClipboard)
			if err != nil {
				fatal(err)
			}
		}

		langs := loadLanguageTable(os.Stderr)
		emitter := NewEmitter(sink, opts, langs, logger)
		if pdfFile != "" {
			emitter.CollectDocuments()
		}

		if countTokens {
			counter, err := newTokenCounter(tokenizerBackend, tokenizerModel, tokenizerFile)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Warning: token counting disabled: %v\n", err)
			} else {
				defer counter.Close()
				emitter.SetTokenCounter(counter)
			}
		}

		proc := NewProcessor(opts, emitter, os.Stderr, logger)
		if err := proc.Run(inputPaths); err != nil {
			fatal(err)
		}
		if err := sink.Close(); err != nil {
			fatal(err)
		}

		if pdfFile != "" {
			if err := generatePDF(emitter.Documents(), emitter.Stats(), pdfFile); err != nil {
				fatal(err)
			}
			fmt.Fprintf(os.Stderr, "Output saved to %s\n", pdfFile)
		}

		stats := emitter.Stats()
		if countTokens {
			fmt.Fprintf(os.Stderr, "Documents: %d, total tokens: %d\n", stats.Documents, stats.TotalTokens)
		}
		if n := proc.FailedPaths(); n > 0 {
			fmt.Fprintf(os.Stderr, "Paths failed to process: %d\n", n)
		}
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Filtering
	rootCmd.Flags().StringArrayVarP(&extensions, "extension", "e", nil, "File extensions to include (repeatable)")
	rootCmd.Flags().BoolVar(&includeHidden, "include-hidden", false, "Include files and folders starting with .")
	rootCmd.Flags().BoolVar(&ignoreFilesOnly, "ignore-files-only", false, "--ignore option only ignores files")
	rootCmd.Flags().BoolVar(&ignoreGitignore, "ignore-gitignore", false, "Ignore .gitignore files and include all files")
	rootCmd.Flags().StringArrayVar(&ignorePatterns, "ignore", nil, "Patterns to ignore (repeatable)")
	viper.BindPFlag("include_hidden", rootCmd.Flags().Lookup("include-hidden"))
	viper.BindPFlag("ignore_gitignore", rootCmd.Flags().Lookup("ignore-gitignore"))

	// Output
	rootCmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output to a file instead of stdout")
	rootCmd.Flags().BoolVarP(&cxml, "cxml", "c", false, "Output in XML-ish format suitable for long context windows")
	rootCmd.Flags().BoolVarP(&markdownOut, "markdown", "m", false, "Output Markdown with fenced code blocks")
	rootCmd.Flags().BoolVarP(&lineNumbers, "line-numbers", "n", false, "Add line numbers to the output")
	rootCmd.Flags().BoolVar(&toClipboard, "clipboard", false, "Copy output to the clipboard")
	rootCmd.Flags().StringVar(&pdfFile, "pdf", "", "Save output as a syntax-highlighted PDF")
	viper.BindPFlag("clipboard", rootCmd.Flags().Lookup("clipboard"))

	// Input sources
	rootCmd.Flags().BoolVarP(&nullSep, "null", "0", false, "Use NUL character as separator when reading paths from stdin")
	rootCmd.Flags().BoolVar(&interactiveMode, "interactive", false, "Open an interactive path picker instead of taking arguments")

	// Token counting
	rootCmd.Flags().BoolVar(&countTokens, "tokens", false, "Count tokens of emitted documents and print a summary")
	rootCmd.Flags().StringVar(&tokenizerBackend, "tokenizer", "tiktoken", "Tokenizer backend: tiktoken or huggingface")
	rootCmd.Flags().StringVar(&tokenizerModel, "model", "", "Model name for the tokenizer (e.g. gpt-4o, gpt2)")
	rootCmd.Flags().StringVar(&tokenizerFile, "tokenizer-file", "", "Path to a local tokenizer file")
	viper.BindPFlag("tokenizer", rootCmd.Flags().Lookup("tokenizer"))
	viper.BindPFlag("model", rootCmd.Flags().Lookup("model"))

	// Web
	rootCmd.Flags().BoolVar(&traverseLinks, "traverse-links", false, "Traverse links when processing URLs")
	rootCmd.Flags().IntVar(&linkDepth, "link-depth", 1, "Maximum depth to traverse links")
	viper.BindPFlag("traverse_links", rootCmd.Flags().Lookup("traverse-links"))
	viper.BindPFlag("link_depth", rootCmd.Flags().Lookup("link-depth"))

	rootCmd.Flags().BoolVar(&debugMode, "debug", false, "Enable debug logging on stderr")

	viper.SetDefault("tokenizer", "tiktoken")
	viper.SetDefault("link_depth", 1)
	viper.SetDefault("traverse_links", false)
}

// initConfig layers config file and environment values under the flags.
func initConfig() {
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "promptcat"))
	}
	viper.AddConfigPath(".")
	viper.SetConfigName("config")
	viper.SetConfigType("toml")

	viper.SetEnvPrefix("PROMPTCAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
		}
	}

	// Config values only apply where the flag was not given explicitly.
	if !rootCmd.Flags().Changed("tokenizer") {
		tokenizerBackend = viper.GetString("tokenizer")
	}
	if !rootCmd.Flags().Changed("model") {
		tokenizerModel = viper.GetString("model")
	}
	if !rootCmd.Flags().Changed("link-depth") {
		linkDepth = viper.GetInt("link_depth")
	}
	if !rootCmd.Flags().Changed("traverse-links") {
		traverseLinks = viper.GetBool("traverse_links")
	}
}

// gatherInputPaths resolves the run's input paths from arguments, the
// interactive picker, or a piped list on stdin. Stdin paths are
// appended after argument paths, each treated identically.
func gatherInputPaths(args []string) ([]string, error) {
	if interactiveMode {
		return runInteractivePicker(includeHidden)
	}

	paths := args
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		stdinPaths, err := readPathsFromStdin(os.Stdin, nullSep)
		if err != nil {
			return nil, fmt.Errorf("reading paths from stdin: %w", err)
		}
		paths = append(paths, stdinPaths...)
	}
	return paths, nil
}

// readPathsFromStdin parses a piped path list, whitespace-separated by
// default or NUL-separated under --null.
func readPathsFromStdin(r io.Reader, useNull bool) ([]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if useNull {
		var paths []string
		for _, p := range strings.Split(string(data), "\x00") {
			if p != "" {
				paths = append(paths, p)
			}
		}
		return paths, nil
	}
	return strings.Fields(string(data)), nil
}

// buildOptions converts the flag variables into the Options the core
// components consume. XML wins if both formats are requested.
func buildOptions() Options {
	format := FormatDefault
	if cxml {
		format = FormatXML
	} else if markdownOut {
		format = FormatMarkdown
	}

	return Options{
		Extensions:      extensions,
		IncludeHidden:   includeHidden,
		IgnoreFilesOnly: ignoreFilesOnly,
		IgnoreGitignore: ignoreGitignore,
		IgnorePatterns:  ignorePatterns,
		Format:          format,
		LineNumbers:     lineNumbers,
		TraverseLinks:   traverseLinks,
		LinkDepth:       linkDepth,
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
