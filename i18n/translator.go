package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves localized messages for Issue codes.
// data provides optional values substituted into "{name}" placeholders
// (for example "field" or "value").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

var dictionaries = map[string]map[string]string{
	"en": {
		"empty_schema_name":      "form name is required",
		"empty_field_name":       "all fields need a name",
		"invalid_field_type":     "invalid field type {value}",
		"duplicate_field_name":   "field name {field} is used more than once",
		"missing_required_field": "{field} is required",
		"invalid_option_value":   "{value} is not an allowed option for {field}",
		"type_mismatch":          "{field} expects a {expected} value",
		"unknown_field":          "{field} is not part of this form",
		"invalid_format":         "invalid {expected} format",
		"duplicate_key":          "key {key} appears more than once",
	},
	"fa": {
		"empty_schema_name":      "نام فرم الزامی است",
		"empty_field_name":       "همه فیلدها باید نام داشته باشند",
		"invalid_field_type":     "نوع فیلد نامعتبر است: {value}",
		"duplicate_field_name":   "نام فیلد {field} تکراری است",
		"missing_required_field": "{field} الزامی است",
		"invalid_option_value":   "{value} گزینه مجاز {field} نیست",
		"type_mismatch":          "{field} باید مقدار {expected} داشته باشد",
		"unknown_field":          "{field} در این فرم وجود ندارد",
		"invalid_format":         "قالب {expected} نامعتبر است",
		"duplicate_key":          "کلید {key} بیش از یک بار آمده است",
	},
}

func (t dictTranslator) Message(code string, data map[string]string) string {
	dict, ok := dictionaries[t.lang]
	if !ok {
		dict = dictionaries["en"]
	}
	msg, ok := dict[code]
	if !ok {
		return code
	}
	for k, v := range data {
		msg = strings.ReplaceAll(msg, "{"+k+"}", v)
	}
	return msg
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"fa").
func SetLanguage(lang string) {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}
