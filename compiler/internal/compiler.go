package internal

import (
	"io"
	"os"
)

// Compile runs the pipeline on b source read from reader: tokenize, parse,
// name analysis, type check, code generation. Lexical and syntax failures
// come back as err; semantic diagnostics come back in report order (all name
// analysis diagnostics, then all type checking ones) and suppress code
// generation.
func Compile(reader io.Reader) (asm string, diagnostics []SemanticError, err error) {
	tokens, err := Tokenize(reader)
	if err != nil {
		return "", nil, err
	}
	program, err := Parse(tokens)
	if err != nil {
		return "", nil, err
	}
	sink := &ErrorSink{}
	AnalyzeProgram(program, sink)
	TypeCheck(program, sink)
	if sink.HasErrors() {
		return "", sink.Errors, nil
	}
	return GenerateCode(program), nil, nil
}

// CompileFile compiles inputPath and writes the assembly to outputPath.
// Nothing is written when the source has errors.
func CompileFile(inputPath, outputPath string) ([]SemanticError, error) {
	input, err := os.Open(inputPath)
	if err != nil {
		return nil, err
	}
	defer input.Close()
	asm, diagnostics, err := Compile(input)
	if err != nil || len(diagnostics) > 0 {
		return diagnostics, err
	}
	return nil, os.WriteFile(outputPath, []byte(asm), 0644)
}
