package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации
	ErrValidationFailed = errors.New("validation failed")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrNameRequired     = errors.New("name is required")

	// Ошибки аутентификации и авторизации
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrForbiddenOperation   = errors.New("operation not allowed for the current user")

	// Ошибки конфликтов
	ErrUsernameConflict     = errors.New("username is already in use")
	ErrSportNameConflict    = errors.New("sport name already exists")
	ErrOrganizationConflict = errors.New("organization name already exists")
	ErrOrganizationInUse    = errors.New("organization cannot be deleted as it owns buildings")
	ErrParticipantExists    = errors.New("sportsman already takes part in this competition")
	ErrPersonRoleLocked     = errors.New("coach flag cannot change while the person has trainings, coach sports or competition entries")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound         = errors.New("user not found")
	ErrSportNotFound        = errors.New("sport not found")
	ErrOrganizationNotFound = errors.New("organization not found")
	ErrBuildingNotFound     = errors.New("building not found")
	ErrPersonNotFound       = errors.New("person not found")
	ErrExperienceNotFound   = errors.New("experience record not found")
	ErrCompetitionNotFound  = errors.New("competition not found")
	ErrLinkNotFound         = errors.New("link not found")

	// Удаление вида спорта без подтверждения.
	ErrDeleteNotConfirmed = errors.New("deletion must be confirmed")

	// Хранилище файлов не настроено.
	ErrStorageUnavailable = errors.New("file storage is not configured")
)
