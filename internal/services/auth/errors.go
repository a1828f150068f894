package services

import "errors"

// Таксономия ошибок бизнес-уровня. Обработчики переводят эти значения
// в HTTP-статусы; ошибки хранилища наружу не выходят.
var (
	// ErrEmailExists — email уже зарегистрирован (в любом регистре).
	ErrEmailExists = errors.New("email already registered")
	// ErrInvalidCredentials — неизвестный email или неверный пароль.
	// Ответ в обоих случаях одинаков, чтобы нельзя было перечислять
	// зарегистрированные адреса.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserNotFound — пользователь удалён после выпуска токена.
	ErrUserNotFound = errors.New("user not found")
	// ErrNoFieldsProvided — запрос на обновление не содержит ни одного
	// распознанного поля.
	ErrNoFieldsProvided = errors.New("no fields provided")
	// ErrInvalidSettingsValue — значение enum-поля вне допустимого набора.
	ErrInvalidSettingsValue = errors.New("invalid settings value")
)
