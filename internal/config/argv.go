package config

import (
	"fmt"
	"strings"
	"unicode"
)

// splitCommand tokenizes a shell-like command line into argv. Quotes group
// words, a backslash escapes the next rune, and a leading # disables the
// command entirely. Placeholders such as {lang} pass through untouched.
func splitCommand(line string) ([]string, error) {
	line = strings.TrimSpace(line)
	if line == "" || line[0] == '#' {
		return nil, nil
	}

	var s commandScanner
	for i, r := range line {
		s.feed(i, r)
	}
	if s.escaping {
		return nil, fmt.Errorf("unterminated escape sequence at offset %d in command: %q", s.escapeAt, line)
	}
	if s.quote != 0 {
		return nil, fmt.Errorf("unterminated quote %c at offset %d in command: %q", s.quote, s.quoteAt, line)
	}
	s.endWord()
	return s.argv, nil
}

type commandScanner struct {
	argv     []string
	word     strings.Builder
	inWord   bool
	quote    rune
	quoteAt  int
	escaping bool
	escapeAt int
}

func (s *commandScanner) feed(offset int, r rune) {
	if s.escaping {
		s.word.WriteRune(r)
		s.escaping = false
		return
	}
	switch {
	case r == '\\':
		s.escaping, s.escapeAt = true, offset
		s.inWord = true
	case s.quote != 0 && r == s.quote:
		s.quote = 0
	case s.quote != 0:
		s.word.WriteRune(r)
	case r == '"' || r == '\'':
		s.quote, s.quoteAt = r, offset
		s.inWord = true
	case unicode.IsSpace(r):
		s.endWord()
	default:
		s.word.WriteRune(r)
		s.inWord = true
	}
}

// endWord emits the pending word. An empty quoted word like "" is kept.
func (s *commandScanner) endWord() {
	if !s.inWord {
		return
	}
	s.argv = append(s.argv, s.word.String())
	s.word.Reset()
	s.inWord = false
}

// builtinCommand parses a command literal compiled into the binary.
func builtinCommand(line string) CommandConfig {
	argv, err := splitCommand(line)
	if err != nil {
		panic(err)
	}
	return CommandConfig{Raw: line, Argv: argv}
}
