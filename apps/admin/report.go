package main

import (
	"context"
	"fmt"

	"github.com/fatih/color"

	"github.com/trezcool/gradebook/core/grading"
	"github.com/trezcool/gradebook/core/result"
)

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	finalColor   = color.New(color.FgGreen)
	pendingColor = color.New(color.FgYellow)
)

// report prints the text report of every exam the student has marks for, or of one exam.
func (cli *commandLine) report(uname, examID string) error {
	ctx := context.Background()
	usr, err := cli.usrSvc.GetStudent(ctx, uname)
	if err != nil {
		return err
	}

	var results []result.StudentResult
	if examID != "" {
		res, err := cli.resultSvc.StudentResult(ctx, usr.Username, examID)
		if err != nil {
			return err
		}
		results = append(results, res)
	} else if results, err = cli.resultSvc.StudentResults(ctx, usr.Username); err != nil {
		return err
	}

	if len(results) == 0 {
		pendingColor.Fprintf(cli.out, "no results for %s\n", usr.Username)
		return nil
	}
	for _, res := range results {
		headingColor.Fprintf(cli.out, "== %s ==\n", res.Exam.Name)
		if res.Result.Final() {
			finalColor.Fprintf(cli.out, "SGPA %s, %s\n", grading.FormatPoint(*res.Result.SGPA), res.Result.Classification)
		} else {
			pendingColor.Fprintln(cli.out, res.Result.Classification)
		}
		if err = result.WriteText(cli.out, usr, res); err != nil {
			return err
		}
		fmt.Fprintln(cli.out)
	}
	return nil
}
