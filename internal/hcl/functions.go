// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package hcl

import (
	"errors"
	"reflect"

	"github.com/hashicorp/hcl/v2"
	"github.com/specialistvlad/buildgrid/internal/build"
	"github.com/specialistvlad/buildgrid/internal/command"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

// Capsule types wrap build entities so they can travel through HCL
// expressions untouched.
var (
	fileType   = cty.Capsule("file", reflect.TypeOf(build.File{}))
	refType    = cty.Capsule("ref", reflect.TypeOf(command.Ref{}))
	targetType = cty.Capsule("target", reflect.TypeOf(build.Target{}))
	flagType   = cty.Capsule("flag", reflect.TypeOf(build.Flag{}))
)

// fileFunc implements file(path).
var fileFunc = function.New(&function.Spec{
	Params: []function.Parameter{
		{Name: "path", Type: cty.String},
	},
	Type: function.StaticReturnType(fileType),
	Impl: func(args []cty.Value, _ cty.Type) (cty.Value, error) {
		path := args[0].AsString()
		if path == "" {
			return cty.NilVal, errors.New("file path must not be empty")
		}
		return cty.CapsuleVal(fileType, build.NewFile(path)), nil
	},
})

// newEvalContext exposes the declared targets and flags, the deferred
// references and the file function to target bodies.
func newEvalContext(targets map[string]*build.Target, flags map[string]*build.Flag) *hcl.EvalContext {
	x := command.NewInvocation()

	targetVals := make(map[string]cty.Value, len(targets))
	for name, t := range targets {
		targetVals[name] = cty.CapsuleVal(targetType, t)
	}
	flagVals := make(map[string]cty.Value, len(flags))
	for name, f := range flags {
		flagVals[name] = cty.CapsuleVal(flagType, f)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"inp":    cty.CapsuleVal(refType, x.Inp),
			"out":    cty.CapsuleVal(refType, x.Out),
			"target": cty.ObjectVal(targetVals),
			"flag":   cty.ObjectVal(flagVals),
		},
		Functions: map[string]function.Function{
			"file": fileFunc,
		},
	}
}
