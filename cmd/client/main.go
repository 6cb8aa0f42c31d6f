package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-session-gateway/internal/config"
	"github.com/jrsteele09/go-session-gateway/internal/logging"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	global := flag.NewFlagSet("client", flag.ContinueOnError)
	envFile := global.String("env-file", "", "load settings from this file instead of ./.env")
	quiet := global.Bool("quiet", false, "do not print the banner")
	global.Usage = func() { usage(global.Output()) }
	if err := global.Parse(args); err != nil {
		return err
	}
	if global.NArg() == 0 {
		usage(global.Output())
		return errors.New("no command given")
	}

	var files []string
	if *envFile != "" {
		files = append(files, *envFile)
	}
	c, err := config.Load(files...)
	if err != nil {
		return err
	}
	logger, err := logging.New(os.Stderr, c.GetLogLevel(), c.GetEnv())
	if err != nil {
		return err
	}
	if !*quiet {
		displayAppname(c.GetAppName(), out)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, closeApp, err := newApp(ctx, c, logger, out)
	if err != nil {
		return err
	}
	defer func() {
		if err := closeApp(); err != nil && returnError == nil {
			returnError = err
		}
	}()
	return a.dispatch(ctx, global.Arg(0), global.Args()[1:])
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: client [-env-file path] [-quiet] <command> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "commands:")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-16s %s\n", cmd.name, cmd.summary)
	}
}

func displayAppname(appname string, out io.Writer) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	fmt.Fprintln(out, myFigure.String())
}
