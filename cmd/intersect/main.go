// Command intersect prints the items present in every given JSON source file.
//
//	intersect [flags] a.json b.json ...
//
// Each source holds one JSON array. Objects carrying an "id" member match by
// that member; every other item matches by deep equality. The result is
// written to stdout as a JSON array. On failure an error envelope is written
// to stderr and the exit status is 1.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := newApp(os.Stdout, os.Stderr).run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
