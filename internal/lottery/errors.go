package lottery

import "errors"

// ErrorKind classifies a rejected call.
type ErrorKind string

const (
	KindInvalidArgument  ErrorKind = "INVALID_ARGUMENT"
	KindInvalidPayment   ErrorKind = "INVALID_PAYMENT"
	KindQuotaExceeded    ErrorKind = "QUOTA_EXCEEDED"
	KindUnauthorized     ErrorKind = "UNAUTHORIZED"
	KindAlreadyEnded     ErrorKind = "ALREADY_ENDED"
	KindEmptyPool        ErrorKind = "EMPTY_POOL"
	KindNotEnded         ErrorKind = "NOT_ENDED"
	KindAlreadyWithdrawn ErrorKind = "ALREADY_WITHDRAWN"
	KindEntriesClosed    ErrorKind = "ENTRIES_CLOSED"
)

// Error is a caller-visible rejection with a fixed reason.
type Error struct {
	Kind   ErrorKind
	Reason string
}

func (e *Error) Error() string {
	return e.Reason
}

var (
	ErrMissingName        = &Error{Kind: KindInvalidArgument, Reason: "The lottery must have a name!"}
	ErrEndDateNotInFuture = &Error{Kind: KindInvalidArgument, Reason: "End date should be in the future!"}
	ErrZeroPrice          = &Error{Kind: KindInvalidArgument, Reason: "The price of entrance should be not 0!"}
	ErrZeroMaxEntries     = &Error{Kind: KindInvalidArgument, Reason: "The user should be entrance at least once!"}

	ErrIncorrectAmount = &Error{Kind: KindInvalidPayment, Reason: "Incorrect amount!"}
	ErrTooManyEntries  = &Error{Kind: KindQuotaExceeded, Reason: "To many entries"}
	ErrEntriesClosed   = &Error{Kind: KindEntriesClosed, Reason: "The lottery entry period is over!"}

	ErrNotOwner       = &Error{Kind: KindUnauthorized, Reason: "Caller is not the owner"}
	ErrLotteryEnded   = &Error{Kind: KindAlreadyEnded, Reason: "The lottery has ended!"}
	ErrEmptyBalance   = &Error{Kind: KindEmptyPool, Reason: "Balance is 0"}
	ErrNotEnded       = &Error{Kind: KindNotEnded, Reason: "The lottery hasn't ended!"}
	ErrPickFirst      = &Error{Kind: KindNotEnded, Reason: "Please pick the winner first!"}
	ErrCommissionPaid = &Error{Kind: KindAlreadyWithdrawn, Reason: "You received the commsision"}
)

// KindOf reports the kind of a lottery rejection wrapped anywhere in err.
func KindOf(err error) (ErrorKind, bool) {
	var le *Error
	if errors.As(err, &le) {
		return le.Kind, true
	}
	return "", false
}
