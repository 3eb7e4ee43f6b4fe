// Package syntax is the syntax database: it maps language tokens and
// first-line signatures onto chroma lexers.
package syntax

import (
	"bytes"
	"slices"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/lexers"
	enry "github.com/go-enry/go-enry/v2"
	"github.com/go-enry/go-enry/v2/data"
)

// DefaultToken names the syntax used when nothing better is known.
const DefaultToken = "plaintext"

// Handle is an immutable reference to a syntax definition.
type Handle struct {
	lexer chroma.Lexer
}

func (h Handle) Name() string {
	if h.lexer == nil {
		return ""
	}
	return h.lexer.Config().Name
}

func (h Handle) Lexer() chroma.Lexer { return h.lexer }

func (h Handle) IsZero() bool { return h.lexer == nil }

// DB is the read-only syntax database consumed by the detector.
type DB interface {
	FindByToken(token string) (Handle, bool)
	FindByFirstLine(line string) (Handle, bool)
	ListAll() []string
	Default() Handle
}

// Chroma is a DB backed by chroma's global lexer registry and go-enry's
// interpreter and modeline tables. It holds no mutable state.
type Chroma struct {
	fallback Handle
}

func NewChroma() *Chroma {
	l := lexers.Get(DefaultToken)
	if l == nil {
		l = lexers.Fallback
	}
	return &Chroma{fallback: Handle{lexer: l}}
}

// FindByToken accepts a lexer name ("Rust"), an alias ("golang") or a file
// extension ("rs").
func (c *Chroma) FindByToken(token string) (Handle, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return Handle{}, false
	}
	l := lexers.Get(strings.TrimPrefix(token, "."))
	if l == nil || l == lexers.Fallback {
		return Handle{}, false
	}
	return Handle{lexer: l}, true
}

var prologues = []struct {
	prefix string
	token  string
}{
	{"<?php", "php"},
	{"<?xml", "xml"},
	{"<!doctype html", "html"},
	{"<html", "html"},
}

// FindByFirstLine matches interpreter directives, editor modelines and
// markup prologues.
func (c *Chroma) FindByFirstLine(line string) (Handle, bool) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return Handle{}, false
	}
	content := []byte(line + "\n")

	if bytes.HasPrefix(content, []byte("#!")) {
		if lang, safe := enry.GetLanguageByShebang(content); safe {
			return c.FromLanguage(lang)
		}
	}
	if lang, safe := enry.GetLanguageByModeline(content); safe {
		return c.FromLanguage(lang)
	}
	lower := strings.ToLower(strings.TrimSpace(line))
	for _, p := range prologues {
		if strings.HasPrefix(lower, p.prefix) {
			return c.FindByToken(p.token)
		}
	}
	return Handle{}, false
}

// FromLanguage maps a linguist language name (as produced by go-enry) onto a lexer.
func (c *Chroma) FromLanguage(lang string) (Handle, bool) {
	if h, ok := c.FindByToken(lang); ok {
		return h, true
	}
	if alias, ok := linguistAliases[lang]; ok {
		if h, ok := c.FindByToken(alias); ok {
			return h, true
		}
	}
	// Only a primary extension that belongs to lang alone: secondary ones
	// are often shared (".bf" is Beef, Befunge and Brainfuck).
	if exts := enry.GetLanguageExtensions(lang); len(exts) > 0 {
		if owners := data.LanguagesByExtension[exts[0]]; len(owners) == 1 && owners[0] == lang {
			if l := lexers.Match("file" + exts[0]); l != nil {
				return Handle{lexer: l}, true
			}
		}
	}
	return Handle{}, false
}

// linguistAliases covers linguist names chroma spells differently.
var linguistAliases = map[string]string{
	"Shell":         "bash",
	"Vim Script":    "vim",
	"Emacs Lisp":    "elisp",
	"Objective-C++": "objectivec",
	"F#":            "fsharp",
}

// ListAll returns the sorted, de-duplicated lexer names.
func (c *Chroma) ListAll() []string {
	return slices.Compact(lexers.Names(false))
}

func (c *Chroma) Default() Handle { return c.fallback }
