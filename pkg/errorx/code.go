package errorx

type Code int

var Unknown = Error{Code: 100000, Message: "Request failed"}

const (
	// Common codes
	BadRequest       Code = 100001
	BadResponse      Code = 100002
	PermissionDenied Code = 100003
	NotFound         Code = 100004
	Unauthenticated  Code = 100005
	AlreadyExists    Code = 100006
	Internal         Code = 100007
	Unavailable      Code = 100008
	NotImplemented   Code = 100009
	TooManyRequests  Code = 100010

	// Configuration codes
	InvalidTicketPrice Code = 200001
	InvalidPlatformFee Code = 200002
	InvalidEndTime     Code = 200003

	// State precondition codes
	NotInitialized   Code = 300001
	RoundClosed      Code = 300002
	LotteryIsDrawing Code = 300003
	LotteryNotOver   Code = 300004
	DrawNotRequested Code = 300005
	WinnerOutOfRange Code = 300006
	NotResolved      Code = 300007
	VaultEmpty       Code = 300008

	// Authorization codes
	UnauthorizedAuthority Code = 400001
	MissingSignature      Code = 400002
	InvalidWinner         Code = 400003
	InvalidPlatformWallet Code = 400004
	InsufficientFunds     Code = 400005

	// Double submission codes
	AlreadyInitialized   Code = 500001
	DuplicateEntry       Code = 500002
	DuplicateTicket      Code = 500003
	AddressMismatch      Code = 500004
	InstructionProcessed Code = 500005
	AlreadyResolved      Code = 500006

	// Arithmetic codes
	Overflow Code = 600001

	// Runtime codes
	AccountInUse       Code = 700001
	InvalidInstruction Code = 700002
	UndeclaredAccount  Code = 700003
)
