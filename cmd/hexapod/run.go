package main

import (
	"context"
	"fmt"
	"strings"
)

type RunCommand struct {
	RobotOptions

	Args struct {
		Command   string `positional-arg-name:"command" required:"yes"`
		Iteration string `positional-arg-name:"iteration"`
	} `positional-args:"yes"`
}

func (c *RunCommand) Execute(args []string) error {
	r, err := c.open()
	if err != nil {
		return err
	}
	defer r.Close()

	d, err := c.dispatcher(r, nil)
	if err != nil {
		return err
	}

	line := strings.TrimSpace(c.Args.Command + " " + c.Args.Iteration)
	fmt.Println(d.Dispatch(context.Background(), line))
	return nil
}
