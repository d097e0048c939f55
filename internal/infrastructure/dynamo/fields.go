package dynamo

// DynamoDB attribute names used in key conditions and update expressions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldUserID      = "user_id"
	fieldPhoneNumber = "phone_number"
	fieldEnable      = "enable"
	fieldUpdatedAt   = "updated_at"
	fieldCode        = "code"
	fieldExpiresAt   = "expires_at"
)
