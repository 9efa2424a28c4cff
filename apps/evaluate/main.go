package main

import (
	"bufio"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"syscall"

	"github.com/trezcool/masomo-feedback/core"
	"github.com/trezcool/masomo-feedback/core/evaluation"
	restbackend "github.com/trezcool/masomo-feedback/services/backend/rest"
	logsvc "github.com/trezcool/masomo-feedback/services/logger"
)

func main() {
	conf := core.NewConfig()

	// the terminal belongs to the respondent; logs only show up in debug mode
	logOut := ioutil.Discard
	if conf.Debug {
		logOut = os.Stderr
	}
	logger := logsvc.NewRollbarLogger(log.New(logOut, "EVALUATE : ", log.LstdFlags), conf)
	logger.Enable(!conf.Debug)

	translator := core.NewTranslator()
	validate := core.NewValidator(translator)
	evaluation.InitValidators(validate, translator)

	errAndDie(conf.Validate(validate))

	client := restbackend.NewClient(conf, validate, translator)

	cli := commandLine{
		ctrl:    evaluation.NewController(client, client, logger, conf.Evaluation.ResetDelay),
		in:      bufio.NewReader(os.Stdin),
		out:     os.Stdout,
		stdinFd: int(syscall.Stdin),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Fprintf(os.Stderr, "\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		log.Fatal(err)
	}
}
