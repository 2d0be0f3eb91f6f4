package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"b_to_mips_compiler/compiler/internal"
)

var (
	input   = flag.String("i", "", "the b source file to compile")
	output  = flag.String("o", "", "the output assembly file. default is the input path with a .s suffix")
	unparse = flag.Bool("unparse", false, "print the canonical form of the program instead of compiling")
)

func main() {
	flag.Parse()
	if *input == "" {
		flag.Usage()
		os.Exit(1)
	}
	if *unparse {
		if err := unparseFile(*input); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}
	outputPath := *output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(*input, ".b") + ".s"
	}
	diagnostics, err := internal.CompileFile(*input, outputPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if len(diagnostics) > 0 {
		for _, diagnostic := range diagnostics {
			fmt.Fprintln(os.Stderr, diagnostic.Error())
		}
		os.Exit(1)
	}
}

func unparseFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()
	tokens, err := internal.Tokenize(file)
	if err != nil {
		return err
	}
	program, err := internal.Parse(tokens)
	if err != nil {
		return err
	}
	fmt.Print(internal.Unparse(program))
	return nil
}
