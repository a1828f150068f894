// Package models содержит доменную модель пользователя системы,
// включающую данные учётной записи, хэш пароля, настройки и дату создания.
// Структуры используются в бизнес‑логике и при работе с хранилищем.
package models

import "time"

// Settings хранит персональные настройки пользователя. Все пять полей
// всегда заполнены: отсутствующие значения подставляются из DefaultSettings
// при создании пользователя.
type Settings struct {
	Theme        string `json:"theme"`        // Тема интерфейса: light или dark
	Language     string `json:"language"`     // Язык интерфейса: en или ru
	Units        string `json:"units"`        // Единицы измерения: metric или imperial
	ShowCalories bool   `json:"showCalories"` // Показывать калории в тренировках
	ShowTimer    bool   `json:"showTimer"`    // Показывать таймер тренировки
}

// DefaultSettings возвращает настройки, назначаемые новому пользователю.
func DefaultSettings() Settings {
	return Settings{
		Theme:        "dark",
		Language:     "ru",
		Units:        "metric",
		ShowCalories: true,
		ShowTimer:    true,
	}
}

// User представляет зарегистрированного пользователя системы.
//
// PasswordHash никогда не сериализуется в API-ответы.
type User struct {
	UID          string    `json:"uid"`   // Уникальный идентификатор пользователя
	Name         string    `json:"name"`  // Отображаемое имя
	Email        string    `json:"email"` // Электронная почта, хранится в нижнем регистре
	PasswordHash string    `json:"-"`     // Хэш пароля пользователя
	Settings     Settings  `json:"settings"`
	CreatedAt    time.Time `json:"createdAt"`
}

// SettingsUpdate используется для приёма частичного обновления настроек
// из JSON-запроса. nil-поле означает "оставить прежнее значение".
// Неизвестные ключи запроса отбрасываются на этапе декодирования.
type SettingsUpdate struct {
	Theme        *string `json:"theme" validate:"omitempty,oneof=light dark"`
	Language     *string `json:"language" validate:"omitempty,oneof=en ru"`
	Units        *string `json:"units" validate:"omitempty,oneof=metric imperial"`
	ShowCalories *bool   `json:"showCalories"`
	ShowTimer    *bool   `json:"showTimer"`
}

// Empty сообщает, что запрос не содержит ни одного распознанного поля.
func (u SettingsUpdate) Empty() bool {
	return u.Theme == nil && u.Language == nil && u.Units == nil &&
		u.ShowCalories == nil && u.ShowTimer == nil
}

// Apply накладывает непустые поля обновления на существующие настройки
// и возвращает результат слияния.
func (u SettingsUpdate) Apply(s Settings) Settings {
	if u.Theme != nil {
		s.Theme = *u.Theme
	}
	if u.Language != nil {
		s.Language = *u.Language
	}
	if u.Units != nil {
		s.Units = *u.Units
	}
	if u.ShowCalories != nil {
		s.ShowCalories = *u.ShowCalories
	}
	if u.ShowTimer != nil {
		s.ShowTimer = *u.ShowTimer
	}
	return s
}
