package actions

// Cross-cutting types produced by the apicall middleware
const (
	ShowToast       Type = "SHOW_TOAST"
	HideToast       Type = "HIDE_TOAST"
	ShowGlobalError Type = "SHOW_GLOBAL_ERROR"
	HideGlobalError Type = "HIDE_GLOBAL_ERROR"
	LogoutSuccess   Type = "LOGOUT_SUCCESS"
)

// Session
const (
	LoginSuccess         Type = "LOGIN_SUCCESS"
	LoginFailure         Type = "LOGIN_FAILURE"
	InvestorLoginSuccess Type = "INVESTOR_LOGIN_SUCCESS"
	InvestorLoginFailure Type = "INVESTOR_LOGIN_FAILURE"
)

// Query params
const (
	SetParams   Type = "SET_PARAMS"
	ResetParams Type = "RESET_PARAMS"
)

// Calls that must go out without a bearer token
const (
	ConsentApproveSuccess Type = "CONSENT_APPROVE_SUCCESS"
	ConsentApproveFailure Type = "CONSENT_APPROVE_FAILURE"
	ConsentRejectSuccess  Type = "CONSENT_REJECT_SUCCESS"
	ConsentRejectFailure  Type = "CONSENT_REJECT_FAILURE"
	CVLVerifySuccess      Type = "CVL_VERIFY_SUCCESS"
	CVLVerifyFailure      Type = "CVL_VERIFY_FAILURE"
)

// Bulk spreadsheet uploads. The body is sent as-is
const (
	UsersBulkUploadSuccess Type = "USERS_BULK_UPLOAD_SUCCESS"
	UsersBulkUploadFailure Type = "USERS_BULK_UPLOAD_FAILURE"
	FundsBulkUploadSuccess Type = "FUNDS_BULK_UPLOAD_SUCCESS"
	FundsBulkUploadFailure Type = "FUNDS_BULK_UPLOAD_FAILURE"
)

// IsTokenless reports whether a call with this success type is sent unauthenticated
func IsTokenless(success Type) bool {
	switch success {
	case ConsentApproveSuccess, ConsentRejectSuccess, CVLVerifySuccess:
		return true
	default:
		return false
	}
}

// IsBulkUpload reports whether a call with this success type uploads a spreadsheet
func IsBulkUpload(success Type) bool {
	switch success {
	case UsersBulkUploadSuccess, FundsBulkUploadSuccess:
		return true
	default:
		return false
	}
}
