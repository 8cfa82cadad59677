package slots

import (
	"regexp"
	"unicode/utf8"
)

// Validation messages shown to the user when a registration slot is rejected.
const (
	MsgInvalidName     = "이름은 2~50자 사이로 입력해주세요."
	MsgInvalidEmail    = "올바른 이메일 형식이 아니에요."
	MsgInvalidPassword = "비밀번호는 8자 이상이어야 해요."
)

const (
	minNameLen     = 2
	maxNameLen     = 50
	minPasswordLen = 8
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidName accepts names of 2 to 50 characters.
func ValidName(name string) (bool, string) {
	n := utf8.RuneCountInString(name)
	if n < minNameLen || n > maxNameLen {
		return false, MsgInvalidName
	}
	return true, ""
}

// ValidEmail accepts addresses shaped like local@domain.tld.
func ValidEmail(email string) (bool, string) {
	if !emailPattern.MatchString(email) {
		return false, MsgInvalidEmail
	}
	return true, ""
}

// ValidPassword accepts passwords of at least 8 characters.
func ValidPassword(password string) (bool, string) {
	if utf8.RuneCountInString(password) < minPasswordLen {
		return false, MsgInvalidPassword
	}
	return true, ""
}
