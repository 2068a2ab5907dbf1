// Copyright 2024 The zb Authors
// SPDX-License-Identifier: MIT

package luaparse

import (
	"testing"

	"github.com/JEBANERD/luaucheck/internal/lualex"
)

func validate(t *testing.T, source string) error {
	t.Helper()
	tokens, err := lualex.Tokenize(source)
	if err != nil {
		t.Fatalf("Tokenize(%q) returned error: %v", source, err)
	}
	return Validate(tokens)
}

func TestValidateAccepts(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"empty chunk", ""},
		{"local assignment", "local x = 1\n"},
		{"function call", "print(\"hi\")\n"},
		{"if statement", "if x then\n  y()\nend\n"},
		{"numeric for", "for i = 1, 10 do\n  print(i)\nend\n"},
		{"generic for", "for k, v in pairs(t) do\n  print(k, v)\nend\n"},
		{"function declaration", "function f(a, b)\n  return a + b\nend\n"},
		{"table constructor", "local t = { a = 1, [2] = 3, 4 }\n"},
		{"union type alias", "type T = string | number\n"},
		{"intersection type annotation", "local x: A & B\n"},
		{"union type annotation", "local x: string | number = 1\n"},
		{"nested union in table type", "type T = { a: string | number }\n"},
		{"generic type alias", "type Box<T> = { value: T }\n"},
		{"function param union type", "local function f(x: string | number)\n  return x\nend\n"},
		{"function return union type", "local function f(): string | number\n  return 1\nend\n"},
		{"compound assignment", "local x = 1\nx += 2\n"},
		{"export type", "export type T = string | number\n"},
		{"bitwise or expression", "local x = 1 | 2\n"},
		{"bitwise and expression", "local x = 1 & 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validate(t, tt.source); err != nil {
				t.Errorf("Validate(%q) = %v; want nil", tt.source, err)
			}
		})
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{"missing end", "if x then\n  y()\n"},
		{"dangling operator", "local x = 1 +\n"},
		{"unexpected token", "local x = ,\n"},
		{"missing then", "if x\n  y()\nend\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := validate(t, tt.source); err == nil {
				t.Errorf("Validate(%q) = nil; want a *SyntaxError", tt.source)
			}
		})
	}
}

func TestSyntaxErrorReportsPosition(t *testing.T) {
	tokens, err := lualex.Tokenize("local x = 1 +\n")
	if err != nil {
		t.Fatal(err)
	}
	err = Validate(tokens)
	var synErr *SyntaxError
	if err == nil {
		t.Fatal("Validate returned nil; want a *SyntaxError")
	}
	synErr, ok := err.(*SyntaxError)
	if !ok {
		t.Fatalf("Validate returned %T; want *SyntaxError", err)
	}
	if synErr.Position.Line != 2 {
		t.Errorf("SyntaxError.Position.Line = %d; want 2", synErr.Position.Line)
	}
}
