// Copyright 2025 NL2Flow
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package interpreter

import (
	"regexp"
	"strings"
)

var (
	placeholderNameRe = regexp.MustCompile(`\{\{([^}]+)\}\}`)
	quotedValueRe     = regexp.MustCompile(`["']([^"']+)["']`)
	wordValueRe       = regexp.MustCompile(`\b([a-zA-Z][\w\-.]+)\b`)
	digitsRe          = regexp.MustCompile(`^\d+$`)
)

// valueCapture matches one parameter value in user text: a bare token up to
// whitespace or comma, or a quoted string
const valueCapture = `([^\s,]+|"[^"]*"|'[^']*')`

// keywordPattern maps a phrasing regex to the placeholder names it can fill
type keywordPattern struct {
	re         *regexp.Regexp
	applicable []string
}

var keywordPatterns = []keywordPattern{
	{regexp.MustCompile(`(?:named?|called?)\s+["']?([^\s,"')]+)["']?`),
		[]string{"name", "instance", "bucket", "topic", "queue"}},
	{regexp.MustCompile(`(?:to|into)\s+["']?([^\s,"')]+)["']?`),
		[]string{"destination", "target", "bucket", "topic"}},
	{regexp.MustCompile(`from\s+["']?([^\s,"')]+)["']?`),
		[]string{"source", "bucket", "file"}},
	{regexp.MustCompile(`(?:in\s+)?zone\s+["']?([^\s,"')]+)["']?`),
		[]string{"zone"}},
	{regexp.MustCompile(`(?:in\s+)?region\s+["']?([^\s,"')]+)["']?`),
		[]string{"region"}},
}

// stopwords are command verbs and filler that never carry a parameter value
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "in": {}, "on": {}, "at": {}, "to": {},
	"from": {}, "with": {}, "and": {}, "or": {}, "for": {},
	"create": {}, "delete": {}, "start": {}, "stop": {}, "list": {},
	"get": {}, "set": {}, "update": {}, "send": {}, "upload": {},
	"download": {}, "connect": {}, "instance": {}, "compute": {},
	"storage": {}, "bucket": {}, "query": {},
}

// extractParams pulls parameter values out of user text by aligning it with
// the placeholder positions of the matched example. When the example's shape
// does not match the text, keyword heuristics fill in what they can.
func extractParams(text, exampleText string) map[string]string {
	placeholders := placeholderNames(exampleText)
	if len(placeholders) == 0 {
		return map[string]string{}
	}

	params := extractByPattern(text, exampleText, placeholders)
	if len(params) == 0 {
		params = extractByKeywords(text, placeholders)
	}
	return params
}

func placeholderNames(exampleText string) []string {
	matches := placeholderNameRe.FindAllStringSubmatch(exampleText, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}

// extractByPattern turns the example text into a regex with one capture
// group per placeholder and matches it against the user text
func extractByPattern(text, exampleText string, placeholders []string) map[string]string {
	pattern := regexp.QuoteMeta(exampleText)
	for _, name := range placeholders {
		escaped := regexp.QuoteMeta("{{" + name + "}}")
		pattern = strings.Replace(pattern, escaped, valueCapture, 1)
	}

	re, err := regexp.Compile(`(?i)` + pattern)
	if err != nil {
		return map[string]string{}
	}

	match := re.FindStringSubmatch(text)
	if match == nil {
		return map[string]string{}
	}

	params := make(map[string]string, len(placeholders))
	for i, name := range placeholders {
		if i+1 >= len(match) {
			break
		}
		params[name] = unquote(match[i+1])
	}
	return params
}

func extractByKeywords(text string, placeholders []string) map[string]string {
	params := make(map[string]string)
	textLower := strings.ToLower(text)

	for _, kp := range keywordPatterns {
		match := kp.re.FindStringSubmatch(textLower)
		if match == nil {
			continue
		}
		value := match[1]
		for _, name := range placeholders {
			if _, filled := params[name]; filled {
				continue
			}
			nameLower := strings.ToLower(name)
			for _, hint := range kp.applicable {
				if strings.Contains(nameLower, hint) {
					params[name] = value
					break
				}
			}
			if _, filled := params[name]; filled {
				break
			}
		}
	}

	// quoted strings fill remaining placeholders in order
	quoted := quotedValueRe.FindAllStringSubmatch(text, -1)
	qi := 0
	for _, name := range placeholders {
		if _, filled := params[name]; filled {
			continue
		}
		if qi >= len(quoted) {
			break
		}
		params[name] = quoted[qi][1]
		qi++
	}

	// then standalone words that are not command vocabulary
	var words []string
	for _, m := range wordValueRe.FindAllStringSubmatch(text, -1) {
		if _, stop := stopwords[strings.ToLower(m[1])]; !stop {
			words = append(words, m[1])
		}
	}
	wi := 0
	for _, name := range placeholders {
		if _, filled := params[name]; filled {
			continue
		}
		if wi >= len(words) {
			break
		}
		params[name] = words[wi]
		wi++
	}

	return params
}

// generateCode substitutes extracted parameter values into the example's
// call expression. Numeric and boolean values shed surrounding quotes so
// the generated call stays well-typed; unfilled placeholders become empty
// strings.
func generateCode(exampleCode string, params map[string]string) string {
	code := exampleCode

	for name, value := range params {
		placeholder := "{{" + name + "}}"
		if isBareValue(value) {
			code = strings.ReplaceAll(code, "'"+placeholder+"'", value)
			code = strings.ReplaceAll(code, `"`+placeholder+`"`, value)
		}
		code = strings.ReplaceAll(code, placeholder, value)
	}

	return placeholderNameRe.ReplaceAllString(code, "''")
}

func isBareValue(value string) bool {
	switch strings.ToLower(value) {
	case "true", "false", "none":
		return true
	}
	return digitsRe.MatchString(value)
}

func unquote(value string) string {
	if len(value) >= 2 {
		if (value[0] == '"' && value[len(value)-1] == '"') ||
			(value[0] == '\'' && value[len(value)-1] == '\'') {
			return value[1 : len(value)-1]
		}
	}
	return value
}
