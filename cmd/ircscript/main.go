// Command ircscript is a small line-oriented driver for the engine: it
// reads script lines from a file (or stdin) and dispatches each one,
// mirroring the teacher's own flag-parsed, logio-backed main.go.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/mgutz/str"
	"github.com/sirupsen/logrus"

	"github.com/jcorbin/ircscript"
	"github.com/jcorbin/ircscript/internal/logio"
	"github.com/jcorbin/ircscript/internal/runeio"
)

func main() {
	var (
		trace       bool
		dump        bool
		keys        bool
		logOutput   bool
		timeout     time.Duration
		uuidRefnums bool
		scriptPath  string
		argstr      string
	)
	flag.BoolVar(&trace, "trace", false, "enable expander trace logging")
	flag.BoolVar(&dump, "dump", false, "print a call-stack dump after execution")
	flag.BoolVar(&keys, "keys", false, "read input as raw keystrokes and drive /BIND bindings instead of script lines")
	flag.BoolVar(&logOutput, "log-output", false, "route say/echo output through the leveled logger instead of stdout")
	flag.DurationVar(&timeout, "timeout", 0, "specify a time limit")
	flag.BoolVar(&uuidRefnums, "uuid-refnums", false, "mint ignore/lastlog refnums from random UUIDs")
	flag.StringVar(&scriptPath, "script", "", "script file to run (default: stdin)")
	flag.StringVar(&argstr, "args", "", `top-level $* words, quoted shell-style (e.g. -args 'one "two words" three')`)
	flag.Parse()

	log := logio.Logger{}
	log.SetOutput(os.Stderr)
	defer os.Exit(log.ExitCode())

	in := os.Stdin
	if scriptPath != "" {
		f, err := os.Open(scriptPath)
		if err != nil {
			log.Errorf("%v", err)
			return
		}
		defer f.Close()
		in = f
	}

	opts := []ircscript.EngineOption{
		ircscript.WithLogrus(logrus.StandardLogger()),
	}
	if logOutput {
		opts = append(opts, ircscript.WithLogWriter(log.Leveledf("OUT")))
	} else {
		opts = append(opts, ircscript.WithOutput(os.Stdout))
	}
	if uuidRefnums {
		opts = append(opts, ircscript.WithUUIDRefnums())
	}
	if trace {
		opts = append(opts, ircscript.WithLogf(log.Leveledf("TRACE")))
	}
	if argstr != "" {
		opts = append(opts, ircscript.WithArgs(str.ToArgv(argstr)))
	}

	eng := ircscript.New(opts...)

	if dump {
		defer func() { eng.Stack.Dump(os.Stdout) }()
	}

	ctx := context.Background()
	if timeout != 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	errRed := color.New(color.FgRed).SprintFunc()
	if keys {
		log.ErrorIf(runKeys(ctx, eng, in))
	} else {
		log.ErrorIf(runLines(ctx, eng, in, errRed))
	}
}

// runLines dispatches in line by line against eng, printing each line's
// error in red and going on with the next line; it stops at ctx's deadline
// or at the end of input. Each line is a full statement batch, exactly as
// a script file's lines are.
func runLines(ctx context.Context, eng *ircscript.Engine, in io.Reader, errRed func(a ...interface{}) string) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		line := scanner.Text()
		if err := eng.Run(line); err != nil {
			fmt.Fprintln(os.Stderr, errRed(err.Error()))
		}
	}
	return scanner.Err()
}

// runKeys reads in rune by rune through a runeio.Reader and feeds each
// rune's encoded bytes to eng.FeedKey in order, driving whatever /BIND
// bindings are registered instead of running script lines.
func runKeys(ctx context.Context, eng *ircscript.Engine, in io.Reader) error {
	r := runeio.NewReader(in)
	var buf [utf8.UTFMax]byte
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		ru, _, err := r.ReadRune()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		n := utf8.EncodeRune(buf[:], ru)
		for _, b := range buf[:n] {
			if err := eng.FeedKey(b); err != nil {
				return err
			}
		}
	}
}
