// Package testsuite extracts compiler test cases from Markdown documents.
// A case starts at a heading whose text is "Test: <name>" and owns the fenced
// code blocks that follow until the next such heading:
//
//	```b``` 	 the source program (required, exactly one)
//	```errors``` one expected diagnostic per line, as line:col: message
//	```asm```	 assembly lines the generated code must contain, in order
package testsuite

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

const (
	fenceSource = "b"
	fenceErrors = "errors"
	fenceAsm    = "asm"
)

type TestCase struct {
	Name   string
	Source string
	// Errors holds the expected diagnostics, one per line of the errors fence.
	Errors []string
	// AsmLines holds assembly lines the output must contain in order.
	AsmLines []string
}

// ExtractTestCases parses a Markdown document and collects its test cases.
func ExtractTestCases(markdownContent string) ([]TestCase, error) {
	md := goldmark.New()
	source := []byte(markdownContent)
	doc := md.Parser().Parse(text.NewReader(source))

	var testCases []TestCase
	var current *TestCase

	finish := func() error {
		if current == nil {
			return nil
		}
		if current.Source == "" {
			return fmt.Errorf("test %q has no b fence", current.Name)
		}
		testCases = append(testCases, *current)
		current = nil
		return nil
	}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := node.(type) {
		case *ast.Heading:
			headingText := extractTextFromNode(n, source)
			if !strings.HasPrefix(headingText, "Test: ") {
				return ast.WalkContinue, nil
			}
			if err := finish(); err != nil {
				return ast.WalkStop, err
			}
			current = &TestCase{Name: strings.TrimPrefix(headingText, "Test: ")}
		case *ast.FencedCodeBlock:
			language := string(n.Language(source))
			if language == "" {
				return ast.WalkContinue, nil
			}
			if current == nil {
				return ast.WalkStop, fmt.Errorf("%s fence found outside of a test case", language)
			}
			content := extractCodeBlockContent(n, source)
			switch language {
			case fenceSource:
				if current.Source != "" {
					return ast.WalkStop, fmt.Errorf("test %q has more than one b fence", current.Name)
				}
				current.Source = content
			case fenceErrors:
				current.Errors = append(current.Errors, nonEmptyLines(content)...)
			case fenceAsm:
				current.AsmLines = append(current.AsmLines, nonEmptyLines(content)...)
			default:
				return ast.WalkStop, fmt.Errorf("unknown fence language %q in test %q", language, current.Name)
			}
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}
	if err := finish(); err != nil {
		return nil, err
	}
	return testCases, nil
}

func extractTextFromNode(node ast.Node, source []byte) string {
	var buf bytes.Buffer
	ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if textNode, ok := n.(*ast.Text); ok {
				buf.Write(textNode.Segment.Value(source))
			}
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func extractCodeBlockContent(codeBlock *ast.FencedCodeBlock, source []byte) string {
	var buf bytes.Buffer
	for i := 0; i < codeBlock.Lines().Len(); i++ {
		line := codeBlock.Lines().At(i)
		buf.Write(line.Value(source))
	}
	return buf.String()
}

func nonEmptyLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimRight(line, " \t")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
