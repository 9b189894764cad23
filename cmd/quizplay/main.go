package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"quizapp"

	"go.uber.org/zap"
)

func main() {
	var (
		bankFile = flag.String("bank", "", "Question bank file (.yaml, .yml or .json)")
		dbPath   = flag.String("db", "", "Generated quiz database to import questions from")
		quizID   = flag.String("quiz", "", "Quiz ID in -db (default: newest completed quiz)")
		seconds  = flag.Int("seconds", quizapp.QuestionSeconds, "Seconds allowed per question")
		verbose  = flag.Bool("verbose", false, "Enable verbose debugging output")
	)
	flag.Parse()

	logger := quizapp.InitLogger(quizapp.LogOptions{Verbose: *verbose})
	defer logger.Sync()

	bank, err := quizapp.OpenBank(quizapp.BankSource{File: *bankFile, DB: *dbPath, QuizID: *quizID})
	if err != nil {
		logger.Fatal("Failed to load question bank", zap.Error(err))
	}

	ctrl := quizapp.NewController(bank, quizapp.WithQuestionSeconds(*seconds))
	defer ctrl.Close()

	play(ctrl, os.Stdin, os.Stdout)
}

// play runs the quiz against line-based input until EOF or "q"
func play(ctrl *quizapp.Controller, in io.Reader, out io.Writer) {
	timer := make(chan quizapp.Snapshot, 16)
	ctrl.OnChange(func(s quizapp.Snapshot) {
		if s.Cause != quizapp.CauseTick && s.Cause != quizapp.CauseExpire {
			return
		}
		select {
		case timer <- s:
		default:
		}
	})

	done := make(chan struct{})
	defer close(done)
	lines := readLines(in, done)

	render(out, ctrl.Snapshot())
	for {
		select {
		case s := <-timer:
			switch {
			case s.Cause == quizapp.CauseExpire:
				fmt.Fprintf(out, "\n⏰ Time's up!\n")
				render(out, ctrl.Snapshot())
			case s.Remaining == 30 || s.Remaining == 10:
				fmt.Fprintf(out, "⏳ %s left\n", s.Clock())
			}
		case line, ok := <-lines:
			if !ok || strings.EqualFold(line, "q") {
				fmt.Fprintln(out, "Bye!")
				return
			}
			handle(ctrl, out, line)
		}
	}
}

// readLines scans in on a goroutine that exits at EOF or once done is closed.
// A reader blocked in Read keeps the goroutine until that Read returns.
func readLines(in io.Reader, done <-chan struct{}) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-done:
				return
			}
		}
	}()
	return lines
}

func handle(ctrl *quizapp.Controller, out io.Writer, line string) {
	before := ctrl.Snapshot()
	cmd := strings.ToUpper(line)

	switch before.View {
	case quizapp.ViewHome, quizapp.ViewResult:
		if cmd != "S" {
			fmt.Fprintln(out, "Type s to start, q to quit")
			return
		}
		ctrl.StartQuiz()
	case quizapp.ViewQuiz:
		switch cmd {
		case "N":
			if err := ctrl.AdvanceFrom(before.Index); err != nil {
				fmt.Fprintf(out, "Time ran out on question %d\n", before.Index+1)
			}
		case "P":
			if err := ctrl.RetreatFrom(before.Index); err != nil {
				fmt.Fprintf(out, "Time ran out on question %d\n", before.Index+1)
			}
		default:
			if err := ctrl.SelectAnswerAt(before.Index, cmd); err != nil {
				fmt.Fprintf(out, "Please enter one of %s, or n/p/q\n", strings.Join(before.Question.Keys(), "/"))
				return
			}
			fmt.Fprintf(out, "Selected %s\n", cmd)
			return
		}
	}

	after := ctrl.Snapshot()
	if after.View != before.View || after.Index != before.Index {
		render(out, after)
	}
}

func render(out io.Writer, s quizapp.Snapshot) {
	switch s.View {
	case quizapp.ViewHome:
		fmt.Fprintln(out, "📘 Quiz App")
		fmt.Fprintln(out, "Type s to start the quiz")
	case quizapp.ViewQuiz:
		fmt.Fprintln(out)
		fmt.Fprintln(out, strings.Repeat("─", 50))
		fmt.Fprintf(out, "Question %d / %d    Time Left: %s\n", s.Index+1, s.Total, s.Clock())
		fmt.Fprintf(out, "%s\n\n", s.Question.Text)
		for _, key := range s.Question.Keys() {
			marker := " "
			if key == s.Selected {
				marker = "*"
			}
			fmt.Fprintf(out, "%s%s) %s\n", marker, key, s.Question.Choices[key])
		}
		next := "n = next"
		if s.IsLast() {
			next = "n = finish"
		}
		fmt.Fprintf(out, "\nAnswer with a letter, %s, p = previous, q = quit\n", next)
	case quizapp.ViewResult:
		fmt.Fprintln(out)
		fmt.Fprintln(out, "🎉 Results")
		fmt.Fprintf(out, "Your Score: %d / %d\n", s.Score, s.Total)
		fmt.Fprintf(out, "Highest Score: %d\n", s.HighScore)
		fmt.Fprintln(out, "Type s to try again, q to quit")
	}
}
