package enhance

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

type substitution struct {
	re   *regexp.Regexp
	with string
}

// Weak phrase → action verb. No replacement is itself a source phrase, so a
// second pass over rewritten text changes nothing.
var weakPhrases = [][2]string{
	{"was responsible for", "owned"},
	{"were responsible for", "owned"},
	{"responsible for", "managed"},
	{"in charge of", "led"},
	{"took part in", "contributed to"},
	{"worked on", "developed"},
	{"worked with", "collaborated with"},
	{"helped with", "led"},
	{"assisted with", "supported"},
	{"helped", "supported"},
	{"fixed", "resolved"},
	{"used", "leveraged"},
}

var substitutions = func() []substitution {
	out := make([]substitution, 0, len(weakPhrases))
	for _, p := range weakPhrases {
		words := strings.Fields(p[0])
		for i, w := range words {
			words[i] = regexp.QuoteMeta(w)
		}
		out = append(out, substitution{
			re:   regexp.MustCompile(`(?i)\b` + strings.Join(words, `\s+`) + `\b`),
			with: p[1],
		})
	}
	return out
}()

// quantifier is appended to statements that carry no number of their own.
const quantifier = "improving efficiency"

// rewriteStatement strengthens one project description or experience bullet.
func rewriteStatement(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	for _, s := range substitutions {
		line = s.re.ReplaceAllStringFunc(line, func(m string) string {
			return matchCase(m, s.with)
		})
	}
	line = collapseRepeats(line)

	if !hasDigit(line) && !strings.Contains(strings.ToLower(line), quantifier) {
		line = strings.TrimRight(line, ".;!?, ") + ", " + quantifier
	}
	return capitalize(terminate(line))
}

// rewriteLines applies rewriteStatement to every non-blank line.
func rewriteLines(text string) string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if r := rewriteStatement(line); r != "" {
			out = append(out, r)
		}
	}
	return strings.Join(out, "\n")
}

// matchCase gives repl the capitalisation of the matched text.
func matchCase(matched, repl string) string {
	if matched == strings.ToUpper(matched) && strings.ToLower(matched) != matched {
		return strings.ToUpper(repl)
	}
	r, _ := utf8.DecodeRuneInString(matched)
	if unicode.IsUpper(r) {
		return capitalize(repl)
	}
	return repl
}

// collapseRepeats drops a word that repeats the previous one ("developed
// developed"), ignoring case.
func collapseRepeats(s string) string {
	words := strings.Fields(s)
	out := make([]string, 0, len(words))
	for i, w := range words {
		if i > 0 && strings.EqualFold(w, words[i-1]) {
			continue
		}
		out = append(out, w)
	}
	return strings.Join(out, " ")
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if size == 0 || unicode.IsUpper(r) {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

// terminate makes sure s ends with sentence punctuation.
func terminate(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return s
	}
	switch s[len(s)-1] {
	case '.', '!', '?':
		return s
	}
	return strings.TrimRight(s, ",;: ") + "."
}
