package sql

import (
	"fmt"

	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/lostma-project/lostma-audit/pkg/apperrors"
)

// InjectionCheckResult describes a bound value that looks like an injection attempt.
type InjectionCheckResult struct {
	ParamName   string
	ParamValue  string
	Fingerprint string
}

// CheckValueForInjection runs libinjection over a caller-supplied value.
// Values are always bound, never interpolated; the check rejects hostile input before it
// reaches the warehouse or the logs. Returns nil when the value is clean.
func CheckValueForInjection(paramName, value string) *InjectionCheckResult {
	isSQLi, fingerprint := libinjection.IsSQLi(value)
	if !isSQLi {
		return nil
	}
	return &InjectionCheckResult{
		ParamName:   paramName,
		ParamValue:  value,
		Fingerprint: string(fingerprint),
	}
}

// CheckLanguage validates a language filter value. An empty language means no filter.
func CheckLanguage(language string) error {
	if language == "" {
		return nil
	}
	if len(language) > 128 {
		return fmt.Errorf("%w: value too long", apperrors.ErrInvalidLanguage)
	}
	if result := CheckValueForInjection("language", language); result != nil {
		return fmt.Errorf("%w: rejected value (fingerprint %s)", apperrors.ErrInvalidLanguage, result.Fingerprint)
	}
	return nil
}
