package internal

import (
	"bytes"
	"fmt"
	"strings"
)

const (
	RegSP = "$sp"
	RegFP = "$fp"
	RegRA = "$ra"
	RegV0 = "$v0"
	RegA0 = "$a0"
	RegT0 = "$t0"
	RegT1 = "$t1"
)

// Emitter owns the textual assembly output: instruction formatting, the
// monotonic label allocator and the string literal pool.
type Emitter struct {
	buf        bytes.Buffer
	labelCount int
	stringPool map[string]string
}

func NewEmitter() *Emitter {
	return &Emitter{stringPool: map[string]string{}}
}

func (emitter *Emitter) Generate(op string, operands ...string) {
	if len(operands) == 0 {
		fmt.Fprintf(&emitter.buf, "\t%s\n", op)
		return
	}
	fmt.Fprintf(&emitter.buf, "\t%s\t%s\n", op, strings.Join(operands, ", "))
}

func (emitter *Emitter) GenerateLabeled(label string) {
	fmt.Fprintf(&emitter.buf, "%s:\n", label)
}

func (emitter *Emitter) NextLabel() string {
	label := fmt.Sprintf("L%d", emitter.labelCount)
	emitter.labelCount++
	return label
}

// GenPush spills reg onto the expression stack.
func (emitter *Emitter) GenPush(reg string) {
	emitter.Generate("sw", reg, "0("+RegSP+")")
	emitter.Generate("subu", RegSP, RegSP, "4")
}

// GenPop loads the top of the expression stack into reg.
func (emitter *Emitter) GenPop(reg string) {
	emitter.Generate("lw", reg, "4("+RegSP+")")
	emitter.Generate("addu", RegSP, RegSP, "4")
}

// InternString returns the label bound to a string literal, emitting its
// .asciiz definition the first time the exact literal is seen. value arrives
// still quoted, which is the form the directive wants.
func (emitter *Emitter) InternString(value string) string {
	if label, ok := emitter.stringPool[value]; ok {
		return label
	}
	label := emitter.NextLabel()
	emitter.stringPool[value] = label
	emitter.Generate(".data")
	emitter.GenerateLabeled(label)
	emitter.Generate(".asciiz", value)
	emitter.Generate(".text")
	return label
}

func (emitter *Emitter) String() string {
	return emitter.buf.String()
}
