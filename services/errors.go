package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ошибки валидации и бизнес-правил
	ErrValidationFailed         = errors.New("validation failed")
	ErrInvalidEmail             = errors.New("email address is invalid")
	ErrPasswordTooShort         = errors.New("password is too short")
	ErrTeamNameRequired         = errors.New("team name is required")
	ErrTeamSportRequired        = errors.New("team sport is required")
	ErrEventTitleRequired       = errors.New("event title is required")
	ErrEventInvalidTimeRange    = errors.New("event start time must be before end time")
	ErrEventInvalidMinPlayers   = errors.New("event min players must be at least 1")
	ErrEventInvalidMaxPlayers   = errors.New("event max players must not be less than min players")
	ErrEventInvalidVoteDeadline = errors.New("vote deadline must not be after event start")
	ErrEventInvalidTransition   = errors.New("a confirmed event cannot return to pending")
	ErrInvalidAttendanceStatus  = errors.New("attendance status must be attending or not_attending")
	ErrVotingClosed             = errors.New("voting for this event is closed")
	ErrCommentEmpty             = errors.New("comment must not be empty")
	ErrCommentTooLong           = errors.New("comment is too long")
	ErrInvalidRating            = errors.New("rating must be between 1 and 5")
	ErrInvalidAmount            = errors.New("payment amount must be positive")
	ErrInvalidPaymentStatus     = errors.New("payment status must be pending, paid or refunded")
	ErrPaymentInvalidTransition = errors.New("invalid payment status transition")
	ErrMessageEmpty             = errors.New("message must not be empty")
	ErrMessageTooLong           = errors.New("message is too long")
	ErrInvalidLogo              = errors.New("logo must be a jpeg, png, gif or webp image")

	// Ошибки конфликтов
	ErrUserEmailConflict       = errors.New("email address is already in use")
	ErrAlreadyMember           = errors.New("user is already a member of this team")
	ErrPaymentExists           = errors.New("a payment for this event already exists")
	ErrPaymentConcurrentUpdate = errors.New("payment was changed by someone else, reload and retry")

	// Ошибки аутентификации и авторизации
	ErrAuthInvalidCredentials = errors.New("invalid email or password")
	ErrAuthenticationFailed   = errors.New("authentication failed")
	ErrInvalidAdminInvite     = errors.New("admin invitation is invalid, expired or issued for another email")
	ErrForbiddenOperation     = errors.New("operation not allowed for the current user")
	ErrNotTeamMember          = errors.New("you are not a member of this team")
	ErrTeamAdminRequired      = errors.New("only a team admin can perform this action")
	ErrPlatformAdminRequired  = errors.New("platform administrator privileges required")
	ErrLastAdmin              = errors.New("the last admin cannot leave the team")

	// Ошибки, специфичные для сущностей
	ErrUserNotFound       = errors.New("user not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrInviteCodeNotFound = errors.New("no team found for this invite code")
	ErrMemberNotFound     = errors.New("team member not found")
	ErrEventNotFound      = errors.New("event not found")
	ErrPaymentNotFound    = errors.New("payment not found")

	// Инфраструктура
	ErrLogoStorageDisabled = errors.New("logo storage is not configured")
)
