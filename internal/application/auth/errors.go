package auth

import "errors"

var (
	ErrCredentialsRequired = errors.New("아이디와 비밀번호를 입력해주세요.")
	ErrInvalidCredentials  = errors.New("아이디 또는 비밀번호가 올바르지 않습니다.")
	ErrNotAuthenticated    = errors.New("인증되지 않은 사용자입니다.")
)
