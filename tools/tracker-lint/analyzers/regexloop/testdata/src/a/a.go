package a

import (
	"regexp"
	re2 "regexp"
)

func bad(texts []string) {
	for _, text := range texts {
		re := regexp.MustCompile(`\d+`) // want "regexp.MustCompile called inside loop"
		_ = re.FindAllString(text, -1)
	}
}

func badCompile(texts []string) {
	for _, text := range texts {
		re, _ := regexp.Compile(`\d+`) // want "regexp.Compile called inside loop"
		_ = re.FindAllString(text, -1)
	}
}

func badAlias(names []string) {
	for _, name := range names {
		re := re2.MustCompile(re2.QuoteMeta(name)) // want "regexp.MustCompile called inside loop"
		_ = re
	}
}

func suppressed(names []string) {
	for _, name := range names {
		//nolint:regexloop // one pattern per startup name
		re := regexp.MustCompile(regexp.QuoteMeta(name))
		_ = re
	}
}

func good(texts []string) {
	re := regexp.MustCompile(`\d+`)
	for _, text := range texts {
		_ = re.FindAllString(text, -1)
	}
}

var globalRe = regexp.MustCompile(`\d+`)

func goodGlobal(texts []string) {
	for _, text := range texts {
		_ = globalRe.FindAllString(text, -1)
	}
}

type regexpLike struct{}

func (regexpLike) MustCompile(string) {}

func goodShadow(texts []string) {
	regexp := regexpLike{}
	for _, text := range texts {
		regexp.MustCompile(text)
	}
}
