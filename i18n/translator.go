package i18n

import (
	"sort"
	"strings"
)

// Translator retrieves localized messages for Issue codes.
// data carries the issue parameters (for example "min" or "property");
// a "{name}" placeholder in a message is replaced by data["name"].
type Translator interface {
	Message(code string, data map[string]string) string
}

var dictionaries = map[string]map[string]string{
	"en": {
		"invalid_type":     "expected {expected}, got {got}",
		"required":         "required property {property} is missing",
		"unknown_key":      "unexpected key {key}",
		"too_small":        "must be {op} {limit}",
		"too_big":          "must be {op} {limit}",
		"too_short":        "must have at least {min} {unit}",
		"too_long":         "must have at most {max} {unit}",
		"pattern":          "does not match pattern {pattern}",
		"invalid_enum":     "must be one of the enumerated values",
		"not_multiple":     "must be a multiple of {multipleOf}",
		"not_unique":       "items {first} and {second} are equal",
		"dependency":       "property {key} requires property {missing}",
		"additional_items": "must have at most {max} items",
		"any_of":           "must satisfy at least one anyOf schema",
		"one_of":           "must satisfy exactly one oneOf schema ({matched} matched)",
		"not":              "must not satisfy the not schema",
		"path":             "path cannot be resolved",
		"schema_invalid":   "schema is not self-valid",
	},
	"ja": {
		"invalid_type":     "型が不正です ({expected} が必要ですが {got} です)",
		"required":         "必須プロパティ {property} が不足しています",
		"unknown_key":      "未知のキー {key} です",
		"too_small":        "{op} {limit} である必要があります",
		"too_big":          "{op} {limit} である必要があります",
		"too_short":        "{unit}が少なすぎます (最小 {min})",
		"too_long":         "{unit}が多すぎます (最大 {max})",
		"pattern":          "パターン {pattern} に一致しません",
		"invalid_enum":     "列挙値のいずれかである必要があります",
		"not_multiple":     "{multipleOf} の倍数である必要があります",
		"not_unique":       "要素 {first} と {second} が重複しています",
		"dependency":       "プロパティ {key} には {missing} が必要です",
		"additional_items": "要素数は最大 {max} です",
		"any_of":           "anyOf のいずれにも一致しません",
		"one_of":           "oneOf のちょうど一つに一致する必要があります ({matched} 件一致)",
		"not":              "not のスキーマに一致してはいけません",
		"path":             "パスを解決できません",
		"schema_invalid":   "スキーマが不正です",
	},
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := dictionaries[t.lang][code]
	if !ok {
		return code
	}
	return fill(msg, data)
}

func fill(msg string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", data[k])
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var currentTranslator Translator = dictTranslator{lang: "en"}

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	currentTranslator = dictTranslator{lang: lang}
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		currentTranslator = dictTranslator{lang: "en"}
		return
	}
	currentTranslator = tr
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return currentTranslator.Message(code, data) }
