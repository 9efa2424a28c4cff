package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/trezcool/masomo-feedback/core/evaluation"
)

var (
	readKeyFunc    = term.ReadPassword // mockable
	isTerminalFunc = term.IsTerminal   // mockable
	sleepFunc      = time.Sleep        // mockable

	errHelp = errors.New("help provided")
	errQuit = errors.New("quit")
)

type commandLine struct {
	ctrl    *evaluation.Controller
	in      *bufio.Reader
	out     io.Writer
	stdinFd int
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  departments - list the departments open for evaluation")
	fmt.Fprintln(cli.out, "  start [-department CODE|ID] [-once] - evaluate a department")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	departmentsCmd := flag.NewFlagSet("departments", flag.ContinueOnError)
	departmentsCmd.SetOutput(cli.out)

	startCmd := flag.NewFlagSet("start", flag.ContinueOnError)
	startCmd.SetOutput(cli.out)
	startDepartment := startCmd.String("department", "", "The department's code or ID. Picked from a list when empty.")
	startOnce := startCmd.Bool("once", false, "Exit after the first submitted evaluation.")

	ctx := context.Background()

	switch args[1] {
	case "departments":
		if err := departmentsCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.listDepartments(ctx)
	case "start":
		if err := startCmd.Parse(args[2:]); err != nil {
			return errHelp
		}
		return cli.start(ctx, *startDepartment, *startOnce)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) printf(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(cli.out, format, args...)
}

func (cli *commandLine) printErr(err error) {
	cli.printf("error: %s\n", err)
}

// readLine returns the next input line, without the line break.
func (cli *commandLine) readLine() (string, error) {
	line, err := cli.in.ReadString('\n')
	if err != nil && !(err == io.EOF && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readKey reads the evaluation key without echoing it when attached to a terminal.
func (cli *commandLine) readKey() (string, error) {
	if !isTerminalFunc(cli.stdinFd) {
		return cli.readLine()
	}
	key, err := readKeyFunc(cli.stdinFd)
	cli.printf("\n")
	if err != nil {
		return "", err
	}
	return string(key), nil
}

func (cli *commandLine) listDepartments(ctx context.Context) error {
	if err := cli.ctrl.LoadDepartments(ctx); err != nil {
		return err
	}
	deps := cli.ctrl.Departments()
	if len(deps) == 0 {
		cli.printf("No departments are open for evaluation.\n")
		return nil
	}
	for _, d := range deps {
		cli.printf("%4d  %-8s %s\n", d.ID, d.Code, d.Name)
	}
	return nil
}
