// Package validation provides input validation utilities
package validation

import (
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Field limits shared by request handlers and services.
const (
	UsernameMinLen       = 3
	UsernameMaxLen       = 50
	EmailMaxLen          = 100
	PasswordMinLen       = 6
	PasswordMaxLen       = 100
	StrongPasswordMinLen = 8
	ArticleTitleMinLen   = 3
	ArticleTitleMaxLen   = 100
	ArticleContentMinLen = 10
	CommentMinLen        = 2
	CommentMaxLen        = 500
	ThemeNameMinLen      = 2
	ThemeNameMaxLen      = 50
	ThemeDescMaxLen      = 255
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_.-]+$`)

// ValidateUsername checks if a username meets requirements
func ValidateUsername(username string) error {
	if err := lengthBetween("username", username, UsernameMinLen, UsernameMaxLen); err != nil {
		return err
	}
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("username can only contain letters, numbers, dots, underscores, and hyphens")
	}
	return nil
}

// ValidateEmail checks the address is a bare addr-spec of at most EmailMaxLen characters.
func ValidateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("email is required")
	}
	if utf8.RuneCountInString(email) > EmailMaxLen {
		return fmt.Errorf("email must not exceed %d characters", EmailMaxLen)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || addr.Name != "" {
		return fmt.Errorf("invalid email format")
	}
	at := strings.LastIndex(email, "@")
	if domain := email[at+1:]; !strings.Contains(domain, ".") || strings.HasSuffix(domain, ".") {
		return fmt.Errorf("invalid email format")
	}
	return nil
}

// ValidatePassword applies the baseline length rule.
func ValidatePassword(password string) error {
	return lengthBetween("password", password, PasswordMinLen, PasswordMaxLen)
}

// ValidateStrongPassword additionally requires an upper- and lowercase
// letter, a digit and a special character, with at least StrongPasswordMinLen characters.
func ValidateStrongPassword(password string) error {
	if err := ValidatePassword(password); err != nil {
		return err
	}
	if utf8.RuneCountInString(password) < StrongPasswordMinLen {
		return fmt.Errorf("password must be at least %d characters long", StrongPasswordMinLen)
	}

	var hasUpper, hasLower, hasDigit, hasSpecial bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			hasSpecial = true
		}
	}

	switch {
	case !hasUpper:
		return fmt.Errorf("password must contain at least one uppercase letter")
	case !hasLower:
		return fmt.Errorf("password must contain at least one lowercase letter")
	case !hasDigit:
		return fmt.Errorf("password must contain at least one digit")
	case !hasSpecial:
		return fmt.Errorf("password must contain at least one special character")
	}
	return nil
}

// ValidateArticle checks title and content lengths.
func ValidateArticle(title, content string) error {
	if err := lengthBetween("title", title, ArticleTitleMinLen, ArticleTitleMaxLen); err != nil {
		return err
	}
	if utf8.RuneCountInString(strings.TrimSpace(content)) < ArticleContentMinLen {
		return fmt.Errorf("content must be at least %d characters long", ArticleContentMinLen)
	}
	return nil
}

func ValidateComment(content string) error {
	return lengthBetween("comment", content, CommentMinLen, CommentMaxLen)
}

func ValidateTheme(name, description string) error {
	if err := lengthBetween("theme name", name, ThemeNameMinLen, ThemeNameMaxLen); err != nil {
		return err
	}
	if utf8.RuneCountInString(description) > ThemeDescMaxLen {
		return fmt.Errorf("description must not exceed %d characters", ThemeDescMaxLen)
	}
	return nil
}

// lengthBetween measures runes after trimming surrounding whitespace.
func lengthBetween(field, value string, minLen, maxLen int) error {
	n := utf8.RuneCountInString(strings.TrimSpace(value))
	if n == 0 {
		return fmt.Errorf("%s is required", field)
	}
	if n < minLen {
		return fmt.Errorf("%s must be at least %d characters long", field, minLen)
	}
	if n > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", field, maxLen)
	}
	return nil
}
