// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

// Package command describes the action a build spec runs. It only describes
// the invocation; starting processes is the build engine's job.
package command

import (
	"errors"
	"fmt"

	"github.com/specialistvlad/buildgrid/internal/schema"
)

// ErrEmptyCommand is returned when a command has nothing to run.
var ErrEmptyCommand = errors.New("command: nothing to run")

// Kind distinguishes a direct process invocation from a shell script.
type Kind string

const (
	KindExec  Kind = "exec"
	KindShell Kind = "sh"
)

// Command is a process or shell invocation. Arguments may be plain values or
// any schema.Converter, such as a deferred Ref or a file.
type Command struct {
	kind   Kind
	script string
	args   []any
	env    map[string]any
	dir    string
}

// Cmd describes a direct process invocation; args[0] is the program.
func Cmd(args ...any) *Command {
	return &Command{kind: KindExec, args: args}
}

// Sh describes a shell script. Extra args are passed to the script as
// positional parameters.
func Sh(script string, args ...any) *Command {
	return &Command{kind: KindShell, script: script, args: args}
}

// Env sets an environment variable for the invocation and returns c.
func (c *Command) Env(name string, value any) *Command {
	if c.env == nil {
		c.env = make(map[string]any)
	}
	c.env[name] = value
	return c
}

// Dir sets the working directory for the invocation and returns c.
func (c *Command) Dir(dir string) *Command {
	c.dir = dir
	return c
}

// Kind returns the invocation kind.
func (c *Command) Kind() Kind {
	return c.kind
}

// ToSchema converts the command. Arguments and environment values are
// converted in the caller's scope.
func (c *Command) ToSchema(sc schema.Scope) (any, error) {
	if c.kind == KindExec && len(c.args) == 0 {
		return nil, ErrEmptyCommand
	}
	if c.kind == KindShell && c.script == "" {
		return nil, ErrEmptyCommand
	}

	args := make([]any, 0, len(c.args))
	for i, a := range c.args {
		v, err := sc.Convert(a)
		if err != nil {
			return nil, err
		}
		if i == 0 && c.kind == KindExec {
			if s, ok := v.(string); !ok || s == "" {
				return nil, fmt.Errorf("%w: program must be a non-empty string, got %T", ErrEmptyCommand, v)
			}
		}
		args = append(args, v)
	}

	out := map[string]any{}
	switch c.kind {
	case KindExec:
		out["exec"] = args
	case KindShell:
		out["sh"] = c.script
		if len(args) > 0 {
			out["args"] = args
		}
	default:
		return nil, fmt.Errorf("command: unknown kind %q", c.kind)
	}

	if len(c.env) > 0 {
		env := make(map[string]any, len(c.env))
		for k, v := range c.env {
			cv, err := sc.Convert(v)
			if err != nil {
				return nil, err
			}
			env[k] = cv
		}
		out["env"] = env
	}
	if c.dir != "" {
		out["dir"] = c.dir
	}
	return out, nil
}
