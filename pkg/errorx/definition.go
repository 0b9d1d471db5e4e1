package errorx

// Category groups codes by what a caller should do about them.
type Category int

const (
	CategoryUnknown Category = iota

	// CategoryConfiguration means the request carried a bad configuration. Nothing
	// was created.
	CategoryConfiguration

	// CategoryState means the current state does not allow the operation. The
	// caller should re-read the state and decide whether to retry.
	CategoryState

	// CategoryAuthorization is an operator error: wrong signer or wrong identity.
	CategoryAuthorization

	// CategoryDoubleSubmission is a logic error and must never be retried.
	CategoryDoubleSubmission

	// CategoryArithmetic means a counter or an amount would have wrapped.
	CategoryArithmetic

	// CategoryTransient can be retried later without any change.
	CategoryTransient
)

func (c Code) Category() Category {
	switch c {
	case InvalidTicketPrice, InvalidPlatformFee, InvalidEndTime, BadRequest, InvalidInstruction:
		return CategoryConfiguration
	case NotInitialized, RoundClosed, LotteryIsDrawing, LotteryNotOver,
		DrawNotRequested, WinnerOutOfRange, NotResolved, VaultEmpty:
		return CategoryState
	case UnauthorizedAuthority, MissingSignature, InvalidWinner,
		InvalidPlatformWallet, InsufficientFunds, PermissionDenied, UndeclaredAccount:
		return CategoryAuthorization
	case AlreadyInitialized, DuplicateEntry, DuplicateTicket, AddressMismatch,
		InstructionProcessed, AlreadyResolved, AlreadyExists:
		return CategoryDoubleSubmission
	case Overflow:
		return CategoryArithmetic
	case AccountInUse, Unavailable, TooManyRequests:
		return CategoryTransient
	}

	return CategoryUnknown
}

func (c Category) String() string {
	switch c {
	case CategoryConfiguration:
		return "configuration"
	case CategoryState:
		return "state"
	case CategoryAuthorization:
		return "authorization"
	case CategoryDoubleSubmission:
		return "double_submission"
	case CategoryArithmetic:
		return "arithmetic"
	case CategoryTransient:
		return "transient"
	}

	return "unknown"
}
