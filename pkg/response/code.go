package response

// 业务状态码
const (
	CodeSuccess = 0
	CodeError   = 1

	// 用户模块错误 100xx
	ErrUserExists   = 10001
	ErrUserNotFound = 10002
	ErrAuthFailed   = 10003
	ErrTokenInvalid = 10004
	ErrNoPermission = 10005

	// 积分模块错误 300xx
	ErrNotRewardsMember   = 30001
	ErrAlreadyMember      = 30002
	ErrAlreadyCheckedIn   = 30003
	ErrRewardNotFound     = 30004
	ErrRewardInactive     = 30005
	ErrRewardNotYetValid  = 30006
	ErrRewardExpired      = 30007
	ErrInsufficientPoints = 30008
	ErrTierTooLow         = 30009
	ErrRedemptionLimit    = 30010
	ErrRewardSoldOut      = 30011
	ErrReferralCode       = 30012

	// 结算模块错误 400xx
	ErrCartEmpty          = 40001
	ErrOutOfStock         = 40002
	ErrOrderFailed        = 40003
	ErrCartNotFound       = 40004
	ErrProductUnavailable = 40005

	// 系统错误 500xx
	ErrServerInternal  = 50001
	ErrInvalidParam    = 50002
	ErrTooManyRequests = 50003
)
