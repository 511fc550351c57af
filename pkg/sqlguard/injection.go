package sqlguard

import (
	libinjection "github.com/corazawaf/libinjection-go"
)

// InjectionCheck is the result of screening free text for SQL injection
// payloads.
type InjectionCheck struct {
	IsSQLi      bool
	Fingerprint string
}

// ScreenText runs libinjection over text that is about to be embedded in a
// prompt. A positive result is advisory: the generated statement still goes
// through Classify and the confirmation flow.
func ScreenText(text string) InjectionCheck {
	isSQLi, fingerprint := libinjection.IsSQLi(text)
	if !isSQLi {
		return InjectionCheck{}
	}
	return InjectionCheck{IsSQLi: true, Fingerprint: string(fingerprint)}
}
