package ops

import "errors"

// Sentinel errors returned by the operations layer. Handlers map these to
// HTTP status codes; anything not in this list is an unexpected persistence
// failure and propagates unchanged.
var (
	ErrWalletNotFound       = errors.New("wallet not found")
	ErrWalletExists         = errors.New("wallet already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrAgreementNotFound    = errors.New("recurrent agreement not found")
	ErrAnnouncementNotFound = errors.New("announcement not found")
	ErrRequestNotFound      = errors.New("request not found")
	ErrTicketNotFound       = errors.New("support ticket not found")

	ErrInvalidAmount     = errors.New("amount must be positive")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrLimitExceeded     = errors.New("credit would exceed wallet limit")
	ErrLimitBelowBalance = errors.New("limit is below current balance")
	ErrSameWallet        = errors.New("sender and recipient wallets are the same")

	ErrInvalidBadgeType = errors.New("unknown badge type")
	ErrInvalidPeriod    = errors.New("unknown leaderboard period")

	ErrInvalidAgreementType   = errors.New("unknown agreement type")
	ErrDuplicateAgreement     = errors.New("agreement with this subscription id already exists")
	ErrDuplicateExternalEvent = errors.New("external payment already recorded")

	ErrAnnouncementClosed  = errors.New("announcement is closed")
	ErrInvalidRequestState = errors.New("request is not in the required state")
	ErrNotAllowed          = errors.New("operation not allowed for this user")
)
