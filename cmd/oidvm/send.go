package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/chazu/oidvm/vm"
	"github.com/chazu/oidvm/wire"
)

// token is one word of a send expression.
type token struct {
	text   string
	quoted bool
}

// sendExpr is "receiver selector" (unary), "receiver op arg" (binary) or
// "receiver key: arg key: arg" (keyword).
type sendExpr struct {
	receiver token
	selector string
	args     []token
}

// tokenize splits a line on whitespace. Single quotes delimit a string that
// may contain spaces; a doubled quote inside one is a literal quote.
func tokenize(line string) ([]token, error) {
	var tokens []token
	i := 0
	for i < len(line) {
		switch c := line[i]; {
		case c == ' ' || c == '\t':
			i++
		case c == '\'':
			var sb strings.Builder
			i++
			closed := false
			for i < len(line) {
				if line[i] == '\'' {
					if i+1 < len(line) && line[i+1] == '\'' {
						sb.WriteByte('\'')
						i += 2
						continue
					}
					i++
					closed = true
					break
				}
				sb.WriteByte(line[i])
				i++
			}
			if !closed {
				return nil, errors.New("unterminated string")
			}
			tokens = append(tokens, token{text: sb.String(), quoted: true})
		default:
			start := i
			for i < len(line) && line[i] != ' ' && line[i] != '\t' {
				i++
			}
			tokens = append(tokens, token{text: line[start:i]})
		}
	}
	return tokens, nil
}

func parseSend(tokens []token) (sendExpr, error) {
	if len(tokens) < 2 {
		return sendExpr{}, errors.New("expected a receiver and a selector")
	}
	expr := sendExpr{receiver: tokens[0]}
	if tokens[1].quoted {
		return sendExpr{}, errors.Errorf("selector %q must not be quoted", tokens[1].text)
	}

	if !strings.HasSuffix(tokens[1].text, ":") {
		expr.selector = tokens[1].text
		expr.args = tokens[2:]
		if want := vm.SelectorArity(expr.selector); len(expr.args) != want {
			return sendExpr{}, errors.Errorf("%s takes %d arguments, got %d", expr.selector, want, len(expr.args))
		}
		return expr, nil
	}

	var sel strings.Builder
	rest := tokens[1:]
	for len(rest) > 0 {
		kw := rest[0]
		if kw.quoted || !strings.HasSuffix(kw.text, ":") {
			return sendExpr{}, errors.Errorf("expected a keyword, got %q", kw.text)
		}
		if len(rest) < 2 {
			return sendExpr{}, errors.Errorf("keyword %s has no argument", kw.text)
		}
		sel.WriteString(kw.text)
		expr.args = append(expr.args, rest[1])
		rest = rest[2:]
	}
	expr.selector = sel.String()
	return expr, nil
}

// ---------------------------------------------------------------------------
// Session
// ---------------------------------------------------------------------------

// session evaluates send expressions against one VM. Loaded assets are VM
// roots and can be named in expressions as @basename.
type session struct {
	vm     *vm.VM
	assets map[string]vm.Value
	out    io.Writer
	wire   bool
}

func newSession(v *vm.VM, out io.Writer) *session {
	return &session{vm: v, assets: make(map[string]vm.Value), out: out}
}

// load interns a text file and keeps it as a root.
func (s *session) load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "load %s", path)
	}
	v, err := s.vm.InternBuffer(data)
	if err != nil {
		return errors.WithMessagef(err, "load %s", path)
	}
	if err := s.vm.AddRoot(v); err != nil {
		s.vm.Objects.Release(v)
		return err
	}
	if _, err := s.vm.Objects.Release(v); err != nil {
		return err
	}
	s.assets[filepath.Base(path)] = v
	return nil
}

// literal converts a token to a value owned by the caller.
func (s *session) literal(t token) (vm.Value, error) {
	if t.quoted {
		return s.vm.Objects.InternString(t.text)
	}
	switch t.text {
	case "nil":
		return vm.Nil, nil
	case "true":
		return vm.True, nil
	case "false":
		return vm.False, nil
	}
	if strings.HasPrefix(t.text, "@") {
		v, ok := s.assets[t.text[1:]]
		if !ok {
			return vm.Nil, errors.Errorf("no asset named %s", t.text[1:])
		}
		return s.vm.Objects.Acquire(v)
	}
	if n, err := strconv.ParseInt(t.text, 10, 64); err == nil {
		if !vm.FitsSmallInteger(n) {
			return vm.Nil, errors.Wrapf(vm.ErrIntegerOverflow, "literal %s", t.text)
		}
		return vm.SmallInteger(n), nil
	}
	if f, err := strconv.ParseFloat(t.text, 64); err == nil {
		return vm.Float(f), nil
	}
	return s.vm.Objects.InternString(t.text)
}

// eval runs one send expression and prints the result.
func (s *session) eval(line string) error {
	tokens, err := tokenize(line)
	if err != nil {
		return err
	}
	expr, err := parseSend(tokens)
	if err != nil {
		return err
	}

	var owned []vm.Value
	defer func() { s.vm.Objects.ReleaseAll(owned...) }()

	recv, err := s.literal(expr.receiver)
	if err != nil {
		return err
	}
	owned = append(owned, recv)
	args := make([]vm.Value, len(expr.args))
	for i, a := range expr.args {
		if args[i], err = s.literal(a); err != nil {
			return err
		}
		owned = append(owned, args[i])
	}

	result, err := s.vm.Perform(recv, expr.selector, args...)
	if err != nil {
		return err
	}
	owned = append(owned, result)

	fmt.Fprintln(s.out, s.vm.Describe(result))
	if s.wire {
		data, err := wire.Marshal(s.vm.Objects, result)
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, hex.EncodeToString(data))
	}
	return nil
}
