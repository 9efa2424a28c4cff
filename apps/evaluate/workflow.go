package main

import (
	"context"
	"io"
	"strconv"
	"strings"

	"github.com/trezcool/masomo-feedback/core/evaluation"
)

// start runs the evaluation workflow until the respondent quits (or after one submission with once).
func (cli *commandLine) start(ctx context.Context, department string, once bool) error {
	if err := cli.ctrl.LoadDepartments(ctx); err != nil {
		cli.printErr(err)
	}

	err := cli.loop(ctx, department, once)
	if err == errQuit || err == io.EOF {
		cli.printf("Bye.\n")
		return nil
	}
	return err
}

func (cli *commandLine) loop(ctx context.Context, department string, once bool) error {
	for {
		var err error
		switch p := cli.ctrl.Phase().(type) {
		case evaluation.SelectDepartmentPhase:
			err = cli.selectDepartment(ctx, department)
			department = ""
		case evaluation.EnterKeyPhase:
			err = cli.enterKey(ctx, p)
		case evaluation.EvaluationPhase:
			var submitted bool
			if submitted, err = cli.evaluate(ctx, p); err == nil && submitted {
				cli.printf("\n%s\n", evaluation.SubmittedMessage)
				if once {
					return nil
				}
				if delay := cli.ctrl.ResetDelay(); delay > 0 {
					cli.printf("Starting over in %s...\n", delay)
					sleepFunc(delay)
				}
				cli.printf("\n")
				cli.ctrl.Reset()
			}
		case evaluation.SubmittedPhase:
			cli.ctrl.Reset()
		}
		if err != nil {
			return err
		}
	}
}

func findDepartment(deps []evaluation.Department, codeOrID string) (evaluation.Department, bool) {
	id, _ := strconv.Atoi(codeOrID)
	for _, d := range deps {
		if (id != 0 && d.ID == id) || (d.Code != "" && strings.EqualFold(d.Code, codeOrID)) {
			return d, true
		}
	}
	return evaluation.Department{}, false
}

func (cli *commandLine) selectDepartment(ctx context.Context, preselected string) error {
	deps := cli.ctrl.Departments()

	if preselected != "" {
		if d, ok := findDepartment(deps, preselected); ok {
			return cli.ctrl.SelectDepartment(d.ID)
		}
		cli.printf("Department %q not found.\n", preselected)
	}

	cli.printf("Select the department to evaluate:\n")
	if len(deps) == 0 {
		cli.printf("  (no departments available)\n")
	}
	for i, d := range deps {
		cli.printf("  %d) %s\n", i+1, d)
		if d.Description != "" {
			cli.printf("     %s\n", d.Description)
		}
	}
	cli.printf("Choice ([r] reload, [q] quit): ")

	line, err := cli.readLine()
	if err != nil {
		return err
	}
	line = strings.TrimSpace(line)
	switch strings.ToLower(line) {
	case "q":
		return errQuit
	case "r":
		if err := cli.ctrl.LoadDepartments(ctx); err != nil {
			cli.printErr(err)
		}
		return nil
	}

	if len(deps) == 0 {
		cli.printf("No departments available, [r] to reload or [q] to quit.\n")
		return nil
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(deps) {
		cli.printf("Please pick a number between 1 and %d.\n", len(deps))
		return nil
	}
	if err := cli.ctrl.SelectDepartment(deps[n-1].ID); err != nil {
		cli.printErr(err)
	}
	return nil
}

func (cli *commandLine) enterKey(ctx context.Context, p evaluation.EnterKeyPhase) error {
	cli.printf("\nDepartment: %s\n", p.Department)
	cli.printf("Evaluation key ([b] back): ")

	key, err := cli.readKey()
	if err != nil {
		return err
	}
	if strings.EqualFold(strings.TrimSpace(key), "b") {
		return cli.ctrl.Back()
	}

	if err := cli.ctrl.SubmitKey(ctx, key); err != nil {
		cli.printErr(err)
		if evErr, ok := err.(*evaluation.Error); ok && evErr.Kind == evaluation.KindRestart {
			cli.printf("Go back to the department list or try again later.\n")
		}
	}
	return nil
}

// evaluate asks the unanswered questions then lets the respondent review and submit.
// It reports whether the evaluation was submitted.
func (cli *commandLine) evaluate(ctx context.Context, p evaluation.EvaluationPhase) (bool, error) {
	qs := p.Questions()
	cli.printf("\nEvaluating %s (%d questions)\n", p.Department(), len(qs))
	for i, q := range qs {
		if _, ok := p.Response(q.ID); ok {
			continue
		}
		if err := cli.ask(i+1, q); err != nil {
			return false, err
		}
	}

	for {
		p, ok := cli.ctrl.Phase().(evaluation.EvaluationPhase)
		if !ok {
			return false, nil
		}
		cli.printReview(p)
		if cli.ctrl.CanSubmit() {
			cli.printf("[s] submit, [1-%d] change an answer, [q] quit: ", len(qs))
		} else {
			cli.printf("Answer every question to submit. [1-%d] answer a question, [q] quit: ", len(qs))
		}

		line, err := cli.readLine()
		if err != nil {
			return false, err
		}
		line = strings.ToLower(strings.TrimSpace(line))
		switch line {
		case "q":
			return false, errQuit
		case "s":
			if err := cli.ctrl.Submit(ctx); err != nil {
				cli.printErr(err)
				continue
			}
			return true, nil
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(qs) {
			cli.printf("Unknown choice %q.\n", line)
			continue
		}
		if err := cli.ask(n, qs[n-1]); err != nil {
			return false, err
		}
	}
}

func (cli *commandLine) printReview(p evaluation.EvaluationPhase) {
	qs := p.Questions()
	cli.printf("\nYour answers (%d/%d):\n", p.Answered(), len(qs))
	for i, q := range qs {
		answer := "-"
		if r, ok := p.Response(q.ID); ok {
			answer = r.Format(q)
		}
		cli.printf("  %d. %s\n     %s\n", i+1, q.Text, answer)
	}
}

// ask prompts for one answer until a valid one is recorded. An empty text answer leaves the question unanswered.
func (cli *commandLine) ask(n int, q evaluation.Question) error {
	for {
		cli.printf("\n%d. %s\n", n, q.Text)
		switch q.Scale {
		case evaluation.ScaleLikert5:
			for i, label := range q.Scale.Options() {
				cli.printf("   %d) %s\n", i+1, label)
			}
			cli.printf("Your choice: ")
		case evaluation.ScaleLikert10:
			cli.printf("Your rating (1-10): ")
		case evaluation.ScaleBoolean:
			cli.printf("[y]es / [n]o: ")
		default:
			cli.printf("Your answer (leave empty to skip): ")
		}

		line, err := cli.readLine()
		if err != nil {
			return err
		}

		var answer evaluation.Answer
		switch q.Scale {
		case evaluation.ScaleLikert5, evaluation.ScaleLikert10:
			n, err := strconv.Atoi(strings.TrimSpace(line))
			if err != nil {
				cli.printf("Please enter a number.\n")
				continue
			}
			answer = evaluation.Score(n)
		case evaluation.ScaleBoolean:
			switch strings.ToLower(strings.TrimSpace(line)) {
			case "y", "yes":
				answer = evaluation.BooleanAnswer(true)
			case "n", "no":
				answer = evaluation.BooleanAnswer(false)
			default:
				cli.printf("Please answer y or n.\n")
				continue
			}
		default:
			answer = evaluation.Text(line)
		}

		if err := cli.ctrl.Record(q.ID, answer); err != nil {
			cli.printErr(err)
			continue
		}
		return nil
	}
}
