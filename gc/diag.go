package gc

// Printer is the collector's diagnostic sink, mirroring the teacher's
// roll-your-own println in src/runtime/print.go (package runtime has no
// fmt/log dependency). DefaultPrinter routes to the builtin println;
// a caller may replace a World's Printer field with its own sink.
type Printer interface {
	Print(string)
}

type stdoutPrinter struct{}

func (stdoutPrinter) Print(s string) { println(s) }

// DefaultPrinter is the Printer NewWorld installs in every World.
var DefaultPrinter Printer = stdoutPrinter{}
