package user

import (
	"bufio"
	"bytes"
	"compress/gzip"
	_ "embed"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"

	"github.com/Jhorne678-blue/BJJ-PRO-GYM/core"
)

var (
	// password policy
	pwdMinLen    = 8
	pwdMinLenTag = "pwdminlen"

	pwdNoSpaceTag = "pwdnospace"

	pwdNotAllNumTag = "pwdnotallnum"

	pwdComplexityTag = "pwdcplx"
	specialRegex     = regexp.MustCompile("[^A-Za-z0-9]")

	pwdMaxSim     = .7
	pwdAttrSimTag = "pwdtoosim"

	pwdNoCommonTag = "pwdnocommon"

	passwordPolicyTexts = map[string]string{
		pwdMinLenTag:     fmt.Sprintf("password must contain at least %d characters", pwdMinLen),
		pwdNoSpaceTag:    "password must not contain whitespace",
		pwdNotAllNumTag:  "password cannot be entirely numeric",
		pwdComplexityTag: "password must contain at least 1 uppercase character, 1 lowercase character, 1 digit and 1 special character",
		pwdAttrSimTag:    "password cannot be similar to user attributes",
		pwdNoCommonTag:   "password is too common",
	}

	//go:embed assets/common-passwords.txt.gz
	commonPasswordsGz []byte
	commonPasswords   = loadCommonPasswords()
)

// InitValidators registers the password policy on `validate`.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	validate.RegisterStructValidation(userStructValidation, NewUser{})
	for tag, text := range passwordPolicyTexts {
		core.RegisterCustomTranslation(validate, translator, tag, text)
	}
}

func loadCommonPasswords() []string {
	pwds := make([]string, 0, 512)
	if gzRdr, err := gzip.NewReader(bytes.NewReader(commonPasswordsGz)); err == nil {
		scanner := bufio.NewScanner(gzRdr)
		for scanner.Scan() {
			if pwd := strings.TrimSpace(scanner.Text()); pwd != "" {
				pwds = append(pwds, strings.ToLower(pwd))
			}
		}
	}
	sort.Strings(pwds)
	return pwds
}

// userStructValidation does struct level validation on NewUser.
func userStructValidation(sl validator.StructLevel) {
	if usr, ok := sl.Current().Interface().(NewUser); ok {
		if tag := checkPassword(usr.Password, usr.Name, usr.Email, usr.CardCode); tag != "" {
			sl.ReportError(usr.Password, "password", "Password", tag, "")
		}
	}
}

// checkPassword applies the password policy to provided password and returns the tag of
// the first violated rule ("" when the password is acceptable):
// - minLen: 8
// - no whitespace
// - no all numeric
// - complexity: 1 upper, 1 lower, 1 digit, 1 special
// - no user attrs similarity
// - no common password
func checkPassword(pwd string, userAttrs ...string) string {
	var (
		digitCount                             int
		hasUpper, hasLower, hasDig, hasSpecial bool
	)

	runes := []rune(pwd)
	if len(runes) < pwdMinLen {
		return pwdMinLenTag
	}
	for _, char := range runes {
		if unicode.IsSpace(char) {
			return pwdNoSpaceTag
		}
		if unicode.IsDigit(char) {
			digitCount++
		}
		if !hasUpper && unicode.IsUpper(char) {
			hasUpper = true
		}
		if !hasLower && unicode.IsLower(char) {
			hasLower = true
		}
	}

	if digitCount == len(runes) {
		return pwdNotAllNumTag
	}

	hasDig = digitCount > 0
	hasSpecial = specialRegex.MatchString(pwd)
	if !(hasUpper && hasLower && hasDig && hasSpecial) {
		return pwdComplexityTag
	}

	for _, attr := range userAttrs {
		if attr == "" {
			continue
		}
		m := difflib.NewMatcher(strings.Split(strings.ToLower(pwd), ""), strings.Split(strings.ToLower(attr), ""))
		if m.QuickRatio() >= pwdMaxSim {
			return pwdAttrSimTag
		}
	}

	lpwd := strings.ToLower(pwd)
	if idx := sort.SearchStrings(commonPasswords, lpwd); idx < len(commonPasswords) && commonPasswords[idx] == lpwd {
		return pwdNoCommonTag
	}
	return ""
}
