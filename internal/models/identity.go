// Package models содержит доменные структуры сервиса: идентичность
// пользователя, подписку, заявку на бета-доступ и запись о покупке.
package models

// Role роль пользователя, полученная из проверенных claims токена.
type Role string

// Возможные роли пользователя.
const (
	RoleUser       Role = "user"
	RoleSupport    Role = "support"
	RoleAccountant Role = "accountant"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// IsAdmin сообщает, даёт ли роль полный доступ к админ-панели.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Valid проверяет, что роль входит в известный набор.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleSupport, RoleAccountant, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Identity описывает аутентифицированного пользователя запроса.
// Отсутствие Identity (nil) означает анонимный запрос. Сервис
// никогда не изменяет эти данные — они приходят только из
// проверенного токена, не из полей клиента.
type Identity struct {
	UID      string
	Username string
	Role     Role
}
