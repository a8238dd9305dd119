package i18n

import "strings"

// Translator retrieves localized messages for Issue codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "ref").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	var msg string
	switch t.lang {
	case "ja":
		switch code {
		case "unresolved_ref":
			msg = "参照を解決できません"
		case "cyclic_ref":
			msg = "参照が循環しています"
		case "unsupported_type":
			msg = "未対応の型です"
		case "path_type_mismatch":
			msg = "パスの型が一致しません"
		case "store_failure":
			msg = "ストアの操作に失敗しました"
		case "duplicate_key":
			msg = "キーが重複しています"
		case "parse_error":
			msg = "解析エラー"
		}
	default: // "en"
		switch code {
		case "unresolved_ref":
			msg = "unresolved reference"
		case "cyclic_ref":
			msg = "cyclic reference"
		case "unsupported_type":
			msg = "unsupported type"
		case "path_type_mismatch":
			msg = "path type mismatch"
		case "store_failure":
			msg = "store failure"
		case "duplicate_key":
			msg = "duplicate key"
		case "parse_error":
			msg = "parse error"
		}
	}
	if msg == "" {
		return code
	}
	return msg + detail(data)
}

// detail renders the metadata keys the catalog knows about.
func detail(data map[string]string) string {
	if len(data) == 0 {
		return ""
	}
	var parts []string
	if r := data["ref"]; r != "" {
		parts = append(parts, r)
	}
	if e := data["expected"]; e != "" {
		p := "expected " + e
		if g := data["got"]; g != "" {
			p += ", got " + g
		}
		parts = append(parts, p)
	} else if g := data["got"]; g != "" {
		parts = append(parts, g)
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, "; ") + ")"
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
