package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/gwillem/hexapod/pkg/client"
)

var (
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	successStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	responseStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
)

const prompt = " -> "

type ClientCommand struct {
	Addr    string        `short:"a" long:"addr" env:"HEXAPOD_ADDR" default:"127.0.0.1:5000" description:"Server address"`
	Script  string        `short:"s" long:"script" description:"Run the commands in this file, one per line"`
	Timeout time.Duration `long:"timeout" default:"300s" description:"How long to wait for each response"`
}

func (c *ClientCommand) Execute(args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cl, err := client.Dial(ctx, c.Addr)
	if err != nil {
		return err
	}
	defer cl.Close()
	cl.Timeout = c.Timeout

	fmt.Println(headerStyle.Render("hexapod client") + " " + dimStyle.Render(c.Addr))

	if c.Script != "" {
		f, err := os.Open(c.Script)
		if err != nil {
			return err
		}
		defer f.Close()
		return runScript(cl, f, os.Stdout)
	}

	fmt.Println(dimStyle.Render("Type a command, 'commands' to list them, 'q' to quit."))
	return interactive(cl, os.Stdin, os.Stdout)
}

type sender interface {
	Send(line string) (string, error)
}

func printResponse(out io.Writer, resp string) {
	style := responseStyle
	if strings.HasPrefix(resp, "ERROR") || resp == "Command not found!" {
		style = errorStyle
	}
	fmt.Fprintln(out, "Received from server: "+style.Render(resp))
}

// runScript sends every non-blank line of in. Lines starting with # are
// comments.
func runScript(s sender, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fmt.Fprintln(out, dimStyle.Render(prompt+line))
		resp, err := s.Send(line)
		if err != nil {
			return err
		}
		printResponse(out, resp)
	}
	return scanner.Err()
}

// interactive prompts for commands until 'q' or end of input.
func interactive(s sender, in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "q" {
			return nil
		}
		if line == "" {
			continue
		}
		resp, err := s.Send(line)
		if err != nil {
			return err
		}
		printResponse(out, resp)
	}
}
