package main

import (
	"fmt"
	"io"

	"github.com/nbkit/jkexec/internal/kernel"
)

// consolePrinter renders outputs incrementally as they arrive from the
// kernel. Stream text is written verbatim; results, displayed payloads, and
// errors each end their own line.
type consolePrinter struct {
	out io.Writer
}

func (p *consolePrinter) Emit(o kernel.Output) {
	text := o.ConsoleText()
	if o.IsStream() {
		if text != "" {
			fmt.Fprint(p.out, text)
		}
		return
	}
	fmt.Fprintln(p.out, text)
}
