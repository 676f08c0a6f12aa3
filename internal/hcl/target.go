// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package hcl

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/buildgrid/internal/build"
	"github.com/specialistvlad/buildgrid/internal/command"
	"github.com/zclconf/go-cty/cty"
)

// targetBodySchema is the HCL schema for the body of a `target` block.
var targetBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "key"},
		{Name: "runtime"},
		{Name: "inp"},
		{Name: "out"},
		{Name: "inout"},
		{Name: "ready"},
		{Name: "command"},
		{Name: "shell"},
	},
}

// decodeTargetBody evaluates a target body into a build spec.
func decodeTargetBody(body hcl.Body, evalCtx *hcl.EvalContext) (*build.Spec, hcl.Diagnostics) {
	content, diags := body.Content(targetBodySchema)
	if diags.HasErrors() {
		return nil, diags
	}
	attrs := content.Attributes

	var args build.Args
	if attr, ok := attrs["key"]; ok {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, evalCtx, &args.Key)...)
	}

	groups := []struct {
		name string
		dst  *map[string]any
	}{
		{"inp", &args.Inp},
		{"out", &args.Out},
		{"inout", &args.InOut},
		{"ready", &args.Ready},
	}
	for _, g := range groups {
		attr, ok := attrs[g.name]
		if !ok {
			continue
		}
		fields, fieldDiags := decodeFields(attr, evalCtx)
		diags = append(diags, fieldDiags...)
		*g.dst = fields
	}
	if diags.HasErrors() {
		return nil, diags
	}

	spec := build.NewSpec(args)

	if attr, ok := attrs["runtime"]; ok {
		var runtime string
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, evalCtx, &runtime)...)
		spec.Runtime(runtime)
	}

	cmd, cmdDiags := decodeCommand(attrs, evalCtx)
	diags = append(diags, cmdDiags...)
	if cmd != nil {
		spec.Command(func(command.Invocation) *command.Command { return cmd })
	}

	if diags.HasErrors() {
		return nil, diags
	}
	return spec, diags
}

// decodeFields evaluates an object attribute into a field group. The values
// stay cty values so capsules are converted in the group's mode later.
func decodeFields(attr *hcl.Attribute, evalCtx *hcl.EvalContext) (map[string]any, hcl.Diagnostics) {
	val, diags := attr.Expr.Value(evalCtx)
	if diags.HasErrors() {
		return nil, diags
	}
	if val.IsNull() {
		return nil, diags
	}

	ty := val.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid field group",
			Detail:   fmt.Sprintf("The %q attribute must be an object, got %s.", attr.Name, ty.FriendlyName()),
			Subject:  attr.Expr.Range().Ptr(),
		})
	}

	fields := make(map[string]any, val.LengthInt())
	for it := val.ElementIterator(); it.Next(); {
		k, v := it.Element()
		fields[k.AsString()] = v
	}
	return fields, diags
}

// decodeCommand reads either `command` (an argument list) or `shell` (a
// script). Declaring both is an error.
func decodeCommand(attrs hcl.Attributes, evalCtx *hcl.EvalContext) (*command.Command, hcl.Diagnostics) {
	cmdAttr, hasCmd := attrs["command"]
	shAttr, hasSh := attrs["shell"]

	switch {
	case hasCmd && hasSh:
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "Conflicting command attributes",
			Detail:   "Only one of \"command\" and \"shell\" may be set.",
			Subject:  shAttr.Expr.Range().Ptr(),
		}}

	case hasSh:
		var script string
		diags := gohcl.DecodeExpression(shAttr.Expr, evalCtx, &script)
		if diags.HasErrors() {
			return nil, diags
		}
		return command.Sh(script), diags

	case hasCmd:
		val, diags := cmdAttr.Expr.Value(evalCtx)
		if diags.HasErrors() {
			return nil, diags
		}
		ty := val.Type()
		if val.IsNull() || !(ty.IsListType() || ty.IsTupleType()) {
			return nil, append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid command",
				Detail:   "The \"command\" attribute must be a list of arguments.",
				Subject:  cmdAttr.Expr.Range().Ptr(),
			})
		}
		args := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, v := it.Element()
			args = append(args, v)
		}
		if len(args) == 0 || !args[0].(cty.Value).Type().Equals(cty.String) {
			return nil, append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid command",
				Detail:   "The first element of \"command\" must be the program name.",
				Subject:  cmdAttr.Expr.Range().Ptr(),
			})
		}
		return command.Cmd(args...), diags
	}

	return nil, nil
}
