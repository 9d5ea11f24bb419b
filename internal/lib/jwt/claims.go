// Package jwt реализует проверку JWT токенов, выданных внешним
// сервисом аутентификации, и извлечение из них идентичности запроса.
package jwt

import "github.com/golang-jwt/jwt/v5"

// CustomClaims расширяет стандартные claims JWT идентичностью
// пользователя: UID, имя и роль.
type CustomClaims struct {
	UserUID  string `json:"user_uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}
