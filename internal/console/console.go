// Package console is the interactive terminal frontend of the converter.
package console

import (
	"bufio"
	"context"
	"currency-converter/internal/session"
	"currency-converter/pkg/config"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

const unavailableMessage = "It seems that you do not have an internet connection"

type promptRequest struct {
	cause error
	reply chan session.Choice
}

// Console reads commands line by line. Conversions run on the session's
// goroutine; the retry dialog is routed back through the event loop so
// that a single reader owns the input.
type Console struct {
	in      io.Reader
	out     io.Writer
	style   config.Style
	logger  *logrus.Logger
	prompts chan promptRequest
	done    chan struct{}
}

func New(in io.Reader, out io.Writer, style config.Style, logger *logrus.Logger) *Console {
	return &Console{
		in:      in,
		out:     out,
		style:   style,
		logger:  logger,
		prompts: make(chan promptRequest),
		done:    make(chan struct{}),
	}
}

// Prompter must be handed to the session that Run drives.
func (c *Console) Prompter() session.Prompter {
	return session.PrompterFunc(func(ctx context.Context, cause error) session.Choice {
		req := promptRequest{cause: cause, reply: make(chan session.Choice, 1)}
		select {
		case c.prompts <- req:
		case <-ctx.Done():
			return session.Cancel
		case <-c.done:
			return session.Cancel
		}
		select {
		case choice := <-req.reply:
			return choice
		case <-ctx.Done():
			return session.Cancel
		case <-c.done:
			return session.Cancel
		}
	})
}

func (c *Console) Run(ctx context.Context, s *session.Session) error {
	defer close(c.done)

	lines := make(chan string)
	go c.readLines(lines)

	c.printHeader(s)

	var pending *promptRequest
	for {
		select {
		case <-ctx.Done():
			return nil

		case line, ok := <-lines:
			if !ok {
				if pending != nil {
					pending.reply <- session.Cancel
				}
				return nil
			}
			if pending != nil {
				if choice, ok := parseChoice(line); ok {
					pending.reply <- choice
					pending = nil
				} else {
					c.printf("Please answer r (Retry) or c (Cancel): ")
				}
				continue
			}
			if quit := c.handle(ctx, s, line); quit {
				return nil
			}

		case req := <-c.prompts:
			pending = &req
			c.printf("Error: %s.\n", unavailableMessage)
			c.printf("[r] Retry  [c] Cancel: ")

		case out := <-s.Updates():
			c.report(out)
		}
	}
}

func (c *Console) readLines(lines chan<- string) {
	defer close(lines)
	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		select {
		case lines <- scanner.Text():
		case <-c.done:
			return
		}
	}
	if err := scanner.Err(); err != nil {
		c.logger.Errorf("Failed to read input: %v", err)
	}
}

func (c *Console) handle(ctx context.Context, s *session.Session, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}

	var err error
	switch strings.ToLower(fields[0]) {
	case "quit", "exit", "q":
		return true
	case "help", "h", "?":
		c.printHelp()
		return false
	case "list", "ls":
		c.printOptions(s)
		return false
	case "show":
		c.printf("Convert: %s %s\nTo: %s\n%s\n", formatAmount(s.Amount()), s.Source(), s.Target(), s.Result())
		return false
	case "amount", "a":
		if len(fields) != 2 {
			err = errors.New("usage: amount <number>")
			break
		}
		var amount float64
		amount, err = strconv.ParseFloat(strings.ReplaceAll(fields[1], ",", "."), 64)
		if err != nil {
			err = fmt.Errorf("not a number: %s", fields[1])
			break
		}
		err = s.SetAmount(ctx, amount)
	case "from", "f":
		if len(fields) < 2 {
			err = errors.New("usage: from <CODE>")
			break
		}
		err = s.SetSource(ctx, strings.Join(fields[1:], " "))
	case "to", "t":
		if len(fields) < 2 {
			err = errors.New("usage: to <CODE>")
			break
		}
		err = s.SetTarget(ctx, strings.Join(fields[1:], " "))
	default:
		err = fmt.Errorf("unknown command %q, type help", fields[0])
	}

	if err != nil {
		if errors.Is(err, session.ErrBusy) {
			c.printf("Busy: wait for the current conversion to finish.\n")
		} else {
			c.printf("Error: %v\n", err)
		}
	}
	return false
}

func (c *Console) report(out session.Outcome) {
	switch {
	case out.Err != nil:
		c.printf("Error: %v\n", out.Err)
	case out.Cancelled:
		c.logger.Debug("Conversion cancelled")
	default:
		c.printf("%s\n", out.Text)
	}
}

func (c *Console) printHeader(s *session.Session) {
	title := c.style.Title
	if title == "" {
		title = "Currency Converter"
	}
	c.printf("%s\n%s\n", title, strings.Repeat("=", len(title)))
	c.printHelp()
}

func (c *Console) printHelp() {
	c.printf("Commands: amount <n> | from <CODE> | to <CODE> | list | show | quit\n")
}

func (c *Console) printOptions(s *session.Session) {
	width := c.style.SelectorWidth / 10
	for i, opt := range s.SourceOptions() {
		if r := []rune(opt); width > 0 && len(r) > width {
			opt = string(r[:width-1]) + "…"
		}
		c.printf("%3d. %s\n", i+1, opt)
	}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func parseChoice(line string) (session.Choice, bool) {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "r", "retry":
		return session.Retry, true
	case "c", "cancel":
		return session.Cancel, true
	}
	return session.Cancel, false
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// LinePrompter answers the retry dialog from a plain reader, for one-shot
// use where no event loop owns the input. End of input cancels.
func LinePrompter(in *bufio.Reader, out io.Writer) session.Prompter {
	return session.PrompterFunc(func(ctx context.Context, cause error) session.Choice {
		fmt.Fprintf(out, "Error: %s.\n", unavailableMessage)
		for {
			if ctx.Err() != nil {
				return session.Cancel
			}
			fmt.Fprint(out, "[r] Retry  [c] Cancel: ")
			line, err := in.ReadString('\n')
			if choice, ok := parseChoice(line); ok {
				return choice
			}
			if err != nil {
				return session.Cancel
			}
		}
	})
}
