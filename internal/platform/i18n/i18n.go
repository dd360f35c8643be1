package i18n

import "strings"

// Lang define los idiomas soportados por la app.
type Lang string

const (
	LangKo Lang = "ko"
	LangJa Lang = "ja"
)

// ParseLang normaliza un código de idioma; default ko.
func ParseLang(s string) Lang {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ja":
		return LangJa
	default:
		return LangKo
	}
}

// Tablas estáticas. Solo los mensajes que el core expone al usuario;
// el resto del copy vive en la capa de presentación (fuera de este repo).
var messages = map[Lang]map[string]string{
	LangKo: {
		"wizard.uploading":         "사진을 업로드하고 있어요. 잠시만 기다려주세요!",
		"wizard.generating":        "프로필을 만들고 있어요...",
		"wizard.empty_selection":   "사진을 1장 이상 선택해주세요.",
		"wizard.unavailable_style": "아직 준비 중인 스타일이에요.",
		"modal.signup":             "회원가입이 필요해요.",
		"modal.limitReached":       "무료 생성 횟수를 모두 사용했어요.",
		"modal.channelAdd":         "채널을 추가하면 소식을 받아볼 수 있어요.",
		"storage.write_failed":     "변경사항이 저장되지 않았을 수 있어요.",
	},
	LangJa: {
		"wizard.uploading":         "写真をアップロードしています。少々お待ちください！",
		"wizard.generating":        "プロフィールを作成しています...",
		"wizard.empty_selection":   "写真を1枚以上選択してください。",
		"wizard.unavailable_style": "まだ準備中のスタイルです。",
		"modal.signup":             "会員登録が必要です。",
		"modal.limitReached":       "無料生成回数を使い切りました。",
		"modal.channelAdd":         "チャンネルを追加するとお知らせが届きます。",
		"storage.write_failed":     "変更が保存されていない可能性があります。",
	},
}

// Messages devuelve una copia de la tabla completa del idioma, con fallback
// por key al coreano. La capa de presentación la consume entera.
func Messages(lang Lang) map[string]string {
	out := make(map[string]string, len(messages[LangKo]))
	for k, v := range messages[LangKo] {
		out[k] = v
	}
	if lang != LangKo {
		for k, v := range messages[lang] {
			out[k] = v
		}
	}
	return out
}

// T resuelve un mensaje por idioma. Si no existe la key, la devuelve tal cual
// (útil para detectar keys faltantes sin romper la UI).
func T(lang Lang, key string) string {
	if m, ok := messages[lang]; ok {
		if v, ok := m[key]; ok {
			return v
		}
	}
	if lang != LangKo {
		if v, ok := messages[LangKo][key]; ok {
			return v
		}
	}
	return key
}
