package classifier

import (
	"regexp"
	"strings"

	"inkify/api/internal/util"
)

// tokenizeLimit matches the prefix linguist tokenizes.
const tokenizeLimit = 100_000

var (
	reShebang       = regexp.MustCompile(`(?m)^#!\s*(?:\S*/)?(?:env\s+(?:-\S+\s+)*(?:\w+=\S*\s+)*)?([\w.+-]+)`)
	reStringLiteral = regexp.MustCompile(`(?sU)("(?:\\.|[^"\\])*"|'(?:\\.|[^'\\])*'|` + "`[^`]*`" + `)`)
	reBlockComment  = regexp.MustCompile(`(?sU)(/\*.*\*/|<!--.*-->|\{-.*-\}|\(\*.*\*\)|""".*"""|'''.*''')`)
	reLineComment   = regexp.MustCompile(`(?m)(?:^|\s)(?://|--|#|;;)\s.*$`)
	reNumber        = regexp.MustCompile(`\b(?:0[xX][0-9a-fA-F]+|\d[\d.]*(?:[eE][-+]?\d+)?)[uUlLfF]*\b`)
	reSGMLTag       = regexp.MustCompile(`<(/?[A-Za-z][\w:-]*)((?:\s+[\w:-]+(?:=(?:"[^"]*"|'[^']*'|[^\s>]+))?)*)\s*/?>`)
	reSGMLAttr      = regexp.MustCompile(`([\w:-]+)=`)
	reToken         = regexp.MustCompile(`[\w.@#/*]+|[;{}()\[\]]|<<?|>>?|\+|-|\*|/|%|&&?|\|\|?|[=!]=?|:=?`)
)

// Tokenize splits source text into the token vocabulary used by the
// linguist frequency tables: the interpreter of a shebang line becomes
// "SHEBANG#!<name>", markup tags become "<tag>" plus "attr=" tokens, string
// literals, comments and numbers are dropped, and the rest is split into
// identifiers, punctuation and operators.
func Tokenize(text string) []string {
	text = util.TruncateUTF8(text, tokenizeLimit)
	var tokens []string

	if m := reShebang.FindStringSubmatchIndex(text); m != nil && m[0] == 0 {
		tokens = append(tokens, "SHEBANG#!"+text[m[2]:m[3]])
		text = text[m[1]:]
	}

	text = reBlockComment.ReplaceAllString(text, " ")
	text = reSGMLTag.ReplaceAllStringFunc(text, func(tag string) string {
		sub := reSGMLTag.FindStringSubmatch(tag)
		tokens = append(tokens, "<"+sub[1]+">")
		for _, attr := range reSGMLAttr.FindAllStringSubmatch(sub[2], -1) {
			tokens = append(tokens, attr[1]+"=")
		}
		return " "
	})
	text = reStringLiteral.ReplaceAllString(text, " ")
	text = reLineComment.ReplaceAllString(text, " ")
	text = reNumber.ReplaceAllString(text, " ")

	for _, tok := range reToken.FindAllString(text, -1) {
		if strings.Trim(tok, ".") == "" {
			continue
		}
		tokens = append(tokens, tok)
	}
	return tokens
}
